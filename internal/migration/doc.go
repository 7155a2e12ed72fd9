// Package migration implements the file migration workflows: duplicating files into a
// new module while preserving history, marking copied pairs as deprecated, escalating
// deprecations and removing deprecated files.
//
// Each workflow is exposed as a Service method and wrapped by a Cobra command builder.
package migration
