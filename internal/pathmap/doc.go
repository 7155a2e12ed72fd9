// Package pathmap derives project-relative paths, target package names, and
// duplication destinations from absolute source file paths.
package pathmap
