package pathmap

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	pathSeparatorConstant            = "/"
	packageSeparatorConstant         = "."
	defaultSourceRootMarkerConstant  = "src"
	defaultJavaPackageRootConstant   = "java"
	defaultKotlinPackageRootConstant = "kotlin"
	defaultKotlinExtensionConstant   = ".kt"
)

// Configuration controls which path segments and extensions the mapper recognizes.
type Configuration struct {
	SourceRootMarker   string
	PackageRootMarkers []string
	SourceExtensions   []string
}

// DefaultConfiguration returns the Gradle source layout conventions.
func DefaultConfiguration() Configuration {
	return Configuration{
		SourceRootMarker:   defaultSourceRootMarkerConstant,
		PackageRootMarkers: []string{defaultJavaPackageRootConstant, defaultKotlinPackageRootConstant},
		SourceExtensions:   []string{defaultKotlinExtensionConstant},
	}
}

// Mapper translates file paths according to a Configuration.
type Mapper struct {
	configuration Configuration
}

// NewMapper constructs a Mapper, falling back to defaults for empty settings.
func NewMapper(configuration Configuration) *Mapper {
	defaults := DefaultConfiguration()
	resolved := Configuration{
		SourceRootMarker:   strings.TrimSpace(configuration.SourceRootMarker),
		PackageRootMarkers: trimNonEmpty(configuration.PackageRootMarkers),
		SourceExtensions:   trimNonEmpty(configuration.SourceExtensions),
	}
	if len(resolved.SourceRootMarker) == 0 {
		resolved.SourceRootMarker = defaults.SourceRootMarker
	}
	if len(resolved.PackageRootMarkers) == 0 {
		resolved.PackageRootMarkers = defaults.PackageRootMarkers
	}
	if len(resolved.SourceExtensions) == 0 {
		resolved.SourceExtensions = defaults.SourceExtensions
	}
	return &Mapper{configuration: resolved}
}

// ProjectRelativePath keeps the module directory preceding the source root marker and
// everything after it. Paths without the marker map to the empty string.
//
//	/Users/me/project/app/src/main/kotlin/A.kt -> app/src/main/kotlin/A.kt
func (mapper *Mapper) ProjectRelativePath(filePath string) string {
	segments := splitSlashPath(filePath)
	for index, segment := range segments {
		if segment != mapper.configuration.SourceRootMarker {
			continue
		}
		start := index
		if index > 0 {
			start = index - 1
		}
		return strings.Join(segments[start:], pathSeparatorConstant)
	}
	return ""
}

// PackageForPath derives the package a source file should declare. The package root is the
// first marker laid out as <source root>/<source set>/<marker>; paths without that layout use
// the last marker. The boolean is false for files that are not recognized source files or
// that do not live under a package root.
//
//	lib/src/main/java/com/example/java/Util.kt -> com.example.java
func (mapper *Mapper) PackageForPath(filePath string) (string, bool) {
	if !mapper.IsSourceFile(filePath) {
		return "", false
	}

	segments := splitSlashPath(filePath)
	if len(segments) < 2 {
		return "", false
	}

	directorySegments := segments[:len(segments)-1]
	if markerIndex, found := mapper.sourceSetPackageRoot(directorySegments); found {
		return strings.Join(directorySegments[markerIndex+1:], packageSeparatorConstant), true
	}
	for index := len(directorySegments) - 1; index >= 0; index-- {
		if !mapper.isPackageRootMarker(directorySegments[index]) {
			continue
		}
		return strings.Join(directorySegments[index+1:], packageSeparatorConstant), true
	}
	return "", false
}

func (mapper *Mapper) sourceSetPackageRoot(directorySegments []string) (int, bool) {
	for index := 0; index+2 < len(directorySegments); index++ {
		if directorySegments[index] != mapper.configuration.SourceRootMarker {
			continue
		}
		if mapper.isPackageRootMarker(directorySegments[index+2]) {
			return index + 2, true
		}
	}
	return 0, false
}

// IsSourceFile reports whether the file extension is one of the configured source extensions.
func (mapper *Mapper) IsSourceFile(filePath string) bool {
	extension := path.Ext(filepath.ToSlash(filePath))
	for _, candidate := range mapper.configuration.SourceExtensions {
		if strings.EqualFold(candidate, extension) {
			return true
		}
	}
	return false
}

func (mapper *Mapper) isPackageRootMarker(segment string) bool {
	for _, marker := range mapper.configuration.PackageRootMarkers {
		if segment == marker {
			return true
		}
	}
	return false
}

// DestinationPath computes where oldPath lands inside destinationDirectory. A depth of zero
// keeps only the file name; depth d keeps the last d+1 path segments so that the directory
// structure beneath a selected directory is reproduced.
func DestinationPath(oldPath string, destinationDirectory string, depth int) string {
	segments := splitSlashPath(oldPath)
	keep := depth + 1
	if keep > len(segments) {
		keep = len(segments)
	}
	if keep < 1 {
		keep = 1
	}
	tail := segments[len(segments)-keep:]
	return filepath.Join(append([]string{destinationDirectory}, tail...)...)
}

func splitSlashPath(filePath string) []string {
	rawSegments := strings.Split(filepath.ToSlash(filePath), pathSeparatorConstant)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if len(segment) == 0 {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

func trimNonEmpty(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		candidate := strings.TrimSpace(value)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	return trimmed
}
