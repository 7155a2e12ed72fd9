// Package deprecation edits Kotlin source text: it inserts @Deprecated blocks ahead of
// top-level declarations, escalates existing blocks to errors and rewrites package lines.
package deprecation
