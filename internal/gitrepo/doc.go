// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RepositoryManager for inspecting the working tree status, the
// current branch, and the repository root ahead of scripted migrations.
package gitrepo
