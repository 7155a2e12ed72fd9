package traversal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/coremigration/internal/filesystem"
	"github.com/temirov/coremigration/internal/pathmap"
)

const (
	emptySelectionErrorMessageConstant           = "no files or directories selected"
	destinationEqualsSourceErrorMessageConstant  = "destination path equals source path"
	duplicateDestinationErrorMessageConstant     = "several sources map to the same destination"
	duplicateDestinationErrorTemplateConstant    = "%w: %s and %s both map to %s"
	fileSystemNotConfiguredErrorMessageConstant  = "file system not configured"
	invalidExcludePatternErrorTemplateConstant   = "invalid exclude pattern %q: %w"
	resolveSelectionErrorTemplateConstant        = "unable to resolve %s: %w"
	inspectSelectionErrorTemplateConstant        = "unable to inspect %s: %w"
	listDirectoryErrorTemplateConstant           = "unable to list directory %s: %w"
	destinationEqualsSourceErrorTemplateConstant = "%w: %s"
	createParentDirectoryErrorTemplateConstant   = "unable to create directory %s: %w"
	matchExcludePatternErrorTemplateConstant     = "unable to match exclude pattern %q against %s: %w"
	parentDirectoryPermissionsConstant           = fs.FileMode(0o755)
	selectedRootDepthConstant                    = 0
	defaultBuildDirectoryExcludePatternConstant  = "**/build/**"
	defaultGradleDirectoryExcludePatternConstant = "**/.gradle/**"
	defaultDesktopServicesExcludePatternConstant = "**/.DS_Store"
)

var (
	// ErrEmptySelection indicates that no sources were supplied.
	ErrEmptySelection = errors.New(emptySelectionErrorMessageConstant)
	// ErrDestinationEqualsSource indicates that a pair would overwrite its own source.
	ErrDestinationEqualsSource = errors.New(destinationEqualsSourceErrorMessageConstant)
	// ErrDuplicateDestination indicates that two sources would be moved to the same path.
	ErrDuplicateDestination = errors.New(duplicateDestinationErrorMessageConstant)
	// ErrFileSystemNotConfigured indicates that the traverser was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredErrorMessageConstant)
)

// DefaultExcludePatterns returns the build output patterns skipped during traversal.
func DefaultExcludePatterns() []string {
	return []string{
		defaultBuildDirectoryExcludePatternConstant,
		defaultGradleDirectoryExcludePatternConstant,
		defaultDesktopServicesExcludePatternConstant,
	}
}

// Pair couples an existing file with the location it is duplicated to.
type Pair struct {
	OldPath string
	NewPath string
}

// Traverser walks selections and produces duplication pairs.
type Traverser struct {
	fileSystem      filesystem.FileSystem
	excludePatterns []string
}

// NewTraverser validates the exclude patterns and constructs a Traverser.
func NewTraverser(fileSystem filesystem.FileSystem, excludePatterns []string) (*Traverser, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	patterns := make([]string, 0, len(excludePatterns))
	for _, pattern := range excludePatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if len(trimmedPattern) == 0 {
			continue
		}
		if !doublestar.ValidatePattern(trimmedPattern) {
			return nil, fmt.Errorf(invalidExcludePatternErrorTemplateConstant, trimmedPattern, doublestar.ErrBadPattern)
		}
		patterns = append(patterns, trimmedPattern)
	}

	return &Traverser{fileSystem: fileSystem, excludePatterns: patterns}, nil
}

// Traverse expands every selection into pairs targeting destinationDirectory.
func (traverser *Traverser) Traverse(selections []string, destinationDirectory string) ([]Pair, error) {
	if len(selections) == 0 {
		return nil, ErrEmptySelection
	}

	pairs := make([]Pair, 0, len(selections))
	for _, selection := range selections {
		absoluteSelection, absoluteError := traverser.fileSystem.Abs(selection)
		if absoluteError != nil {
			return nil, fmt.Errorf(resolveSelectionErrorTemplateConstant, selection, absoluteError)
		}

		selectionPairs, walkError := traverser.walk(absoluteSelection, absoluteSelection, destinationDirectory, selectedRootDepthConstant)
		if walkError != nil {
			return nil, walkError
		}
		pairs = append(pairs, selectionPairs...)
	}

	if duplicateError := checkDistinctDestinations(pairs); duplicateError != nil {
		return nil, duplicateError
	}
	return pairs, nil
}

func checkDistinctDestinations(pairs []Pair) error {
	sources := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		destination := filepath.Clean(pair.NewPath)
		if previousSource, taken := sources[destination]; taken {
			return fmt.Errorf(duplicateDestinationErrorTemplateConstant, ErrDuplicateDestination, previousSource, pair.OldPath, destination)
		}
		sources[destination] = pair.OldPath
	}
	return nil
}

// EnsureParents creates the parent directory of every destination path.
func (traverser *Traverser) EnsureParents(pairs []Pair) error {
	created := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		parentDirectory := filepath.Dir(pair.NewPath)
		if _, alreadyCreated := created[parentDirectory]; alreadyCreated {
			continue
		}
		if mkdirError := traverser.fileSystem.MkdirAll(parentDirectory, parentDirectoryPermissionsConstant); mkdirError != nil {
			return fmt.Errorf(createParentDirectoryErrorTemplateConstant, parentDirectory, mkdirError)
		}
		created[parentDirectory] = struct{}{}
	}
	return nil
}

func (traverser *Traverser) walk(root string, currentPath string, destinationDirectory string, depth int) ([]Pair, error) {
	info, statError := traverser.fileSystem.Stat(currentPath)
	if statError != nil {
		return nil, fmt.Errorf(inspectSelectionErrorTemplateConstant, currentPath, statError)
	}

	if depth > selectedRootDepthConstant {
		excluded, matchError := traverser.isExcluded(root, currentPath)
		if matchError != nil {
			return nil, matchError
		}
		if excluded {
			return nil, nil
		}
	}

	if !info.IsDir() {
		newPath := pathmap.DestinationPath(currentPath, destinationDirectory, depth)
		if filepath.Clean(newPath) == filepath.Clean(currentPath) {
			return nil, fmt.Errorf(destinationEqualsSourceErrorTemplateConstant, ErrDestinationEqualsSource, currentPath)
		}
		return []Pair{{OldPath: currentPath, NewPath: newPath}}, nil
	}

	entries, listError := traverser.fileSystem.ReadDir(currentPath)
	if listError != nil {
		return nil, fmt.Errorf(listDirectoryErrorTemplateConstant, currentPath, listError)
	}
	sort.Slice(entries, func(left int, right int) bool {
		return entries[left].Name() < entries[right].Name()
	})

	pairs := make([]Pair, 0, len(entries))
	for _, entry := range entries {
		childPairs, childError := traverser.walk(root, filepath.Join(currentPath, entry.Name()), destinationDirectory, depth+1)
		if childError != nil {
			return nil, childError
		}
		pairs = append(pairs, childPairs...)
	}
	return pairs, nil
}

func (traverser *Traverser) isExcluded(root string, currentPath string) (bool, error) {
	relativePath, relativeError := filepath.Rel(root, currentPath)
	if relativeError != nil {
		return false, nil
	}
	slashPath := filepath.ToSlash(relativePath)
	for _, pattern := range traverser.excludePatterns {
		matched, matchError := doublestar.Match(pattern, slashPath)
		if matchError != nil {
			return false, fmt.Errorf(matchExcludePatternErrorTemplateConstant, pattern, slashPath, matchError)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
