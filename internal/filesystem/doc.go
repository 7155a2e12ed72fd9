// Package filesystem abstracts the file operations performed by migration workflows
// so that services can be exercised against in-memory fakes.
package filesystem
