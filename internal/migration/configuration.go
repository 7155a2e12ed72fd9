package migration

import (
	"strings"

	"github.com/temirov/coremigration/internal/ledger"
	"github.com/temirov/coremigration/internal/pathmap"
	"github.com/temirov/coremigration/internal/traversal"
	pathutils "github.com/temirov/coremigration/internal/utils/path"
)

const (
	// DefaultTemporaryBranch is the branch used to stage duplicated files.
	DefaultTemporaryBranch = "tmp/core-migration-duplication"
)

var migrationConfigurationHomeExpander = pathutils.NewHomeExpander()

// Configuration captures persisted settings shared by the migration commands.
type Configuration struct {
	ProjectRoot          string   `mapstructure:"project_root"`
	LedgerPath           string   `mapstructure:"ledger_path"`
	TemporaryBranch      string   `mapstructure:"temporary_branch"`
	SourceRootMarker     string   `mapstructure:"source_root_marker"`
	PackageRootMarkers   []string `mapstructure:"package_root_markers"`
	SourceExtensions     []string `mapstructure:"source_extensions"`
	ExcludePatterns      []string `mapstructure:"exclude_patterns"`
	RequireCleanWorktree bool     `mapstructure:"require_clean_worktree"`
}

// DefaultConfiguration returns baseline settings for the migration commands.
func DefaultConfiguration() Configuration {
	pathConfiguration := pathmap.DefaultConfiguration()
	return Configuration{
		ProjectRoot:          "",
		LedgerPath:           ledger.DefaultRelativePath,
		TemporaryBranch:      DefaultTemporaryBranch,
		SourceRootMarker:     pathConfiguration.SourceRootMarker,
		PackageRootMarkers:   pathConfiguration.PackageRootMarkers,
		SourceExtensions:     pathConfiguration.SourceExtensions,
		ExcludePatterns:      traversal.DefaultExcludePatterns(),
		RequireCleanWorktree: false,
	}
}

// Sanitize trims values, expands home shortcuts and restores defaults for empty settings.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.ProjectRoot = migrationConfigurationHomeExpander.Expand(strings.TrimSpace(configuration.ProjectRoot))
	sanitized.LedgerPath = migrationConfigurationHomeExpander.Expand(strings.TrimSpace(configuration.LedgerPath))
	if len(sanitized.LedgerPath) == 0 {
		sanitized.LedgerPath = defaults.LedgerPath
	}
	sanitized.TemporaryBranch = strings.TrimSpace(configuration.TemporaryBranch)
	if len(sanitized.TemporaryBranch) == 0 {
		sanitized.TemporaryBranch = defaults.TemporaryBranch
	}
	sanitized.SourceRootMarker = strings.TrimSpace(configuration.SourceRootMarker)
	if len(sanitized.SourceRootMarker) == 0 {
		sanitized.SourceRootMarker = defaults.SourceRootMarker
	}
	sanitized.PackageRootMarkers = sanitizeList(configuration.PackageRootMarkers, defaults.PackageRootMarkers)
	sanitized.SourceExtensions = sanitizeList(configuration.SourceExtensions, defaults.SourceExtensions)
	if configuration.ExcludePatterns == nil {
		sanitized.ExcludePatterns = defaults.ExcludePatterns
	} else {
		sanitized.ExcludePatterns = sanitizeList(configuration.ExcludePatterns, nil)
	}

	return sanitized
}

// PathConfiguration converts the settings into a path mapper configuration.
func (configuration Configuration) PathConfiguration() pathmap.Configuration {
	return pathmap.Configuration{
		SourceRootMarker:   configuration.SourceRootMarker,
		PackageRootMarkers: configuration.PackageRootMarkers,
		SourceExtensions:   configuration.SourceExtensions,
	}
}

func sanitizeList(values []string, fallback []string) []string {
	sanitized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	if len(sanitized) == 0 && fallback != nil {
		return append([]string{}, fallback...)
	}
	return sanitized
}
