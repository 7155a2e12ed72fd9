// Package traversal expands user selections of files and directories into ordered
// old-to-new path pairs for duplication into a destination directory.
package traversal
