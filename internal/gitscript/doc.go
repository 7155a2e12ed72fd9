// Package gitscript runs ordered sequences of git invocations and in-process actions,
// stopping at the first failing step.
package gitscript
