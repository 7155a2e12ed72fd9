package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/coremigration/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitShowTopLevelFlagConstant           = "--show-toplevel"
	gitStatusSubcommandConstant           = "status"
	gitPorcelainFlagConstant              = "--porcelain"
	gitDiffSubcommandConstant             = "diff"
	gitCachedFlagConstant                 = "--cached"
	gitNameOnlyFlagConstant               = "--name-only"
	gitTerminalPromptEnvironmentName      = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisable   = "0"
	worktreeStatusErrorTemplateConstant   = "unable to read worktree status: %w"
	stagedPathsErrorTemplateConstant      = "unable to list staged paths: %w"
	currentBranchErrorTemplateConstant    = "unable to determine current branch: %w"
	topLevelErrorTemplateConstant         = "unable to determine repository root: %w"
	emptyTopLevelOutputMessageConstant    = "git reported an empty repository root"
	detachedHeadStateMessageConstant      = "repository is in a detached HEAD state"
	emptyBranchOutputMessageConstant      = "git reported an empty branch name"
)

// ErrGitExecutorNotConfigured indicates the manager was built without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrDetachedHead indicates HEAD does not point at a branch.
var ErrDetachedHead = errors.New(detachedHeadStateMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager answers questions about a repository through git.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree reports whether git status shows no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	output, statusError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return false, fmt.Errorf(worktreeStatusErrorTemplateConstant, statusError)
	}
	return len(strings.TrimSpace(output)) == 0, nil
}

// ListStagedPaths returns the paths whose index state differs from HEAD.
func (manager *RepositoryManager) ListStagedPaths(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, diffError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitCachedFlagConstant, gitNameOnlyFlagConstant)
	if diffError != nil {
		return nil, fmt.Errorf(stagedPathsErrorTemplateConstant, diffError)
	}
	stagedPaths := []string{}
	for _, line := range strings.Split(output, "\n") {
		if trimmedLine := strings.TrimSpace(line); len(trimmedLine) > 0 {
			stagedPaths = append(stagedPaths, trimmedLine)
		}
	}
	return stagedPaths, nil
}

// GetCurrentBranch returns the checked out branch name. A detached HEAD yields ErrDetachedHead.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	output, branchError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if branchError != nil {
		return "", fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}

	branchName := strings.TrimSpace(output)
	switch branchName {
	case "":
		return "", fmt.Errorf(currentBranchErrorTemplateConstant, errors.New(emptyBranchOutputMessageConstant))
	case gitHeadReferenceConstant:
		return "", ErrDetachedHead
	default:
		return branchName, nil
	}
}

// GetTopLevel returns the absolute path of the repository containing repositoryPath.
func (manager *RepositoryManager) GetTopLevel(executionContext context.Context, repositoryPath string) (string, error) {
	output, topLevelError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant)
	if topLevelError != nil {
		return "", fmt.Errorf(topLevelErrorTemplateConstant, topLevelError)
	}

	topLevel := strings.TrimSpace(output)
	if len(topLevel) == 0 {
		return "", fmt.Errorf(topLevelErrorTemplateConstant, errors.New(emptyTopLevelOutputMessageConstant))
	}
	return topLevel, nil
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", ErrRepositoryPathRequired
	}

	result, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     trimmedRepositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentName: gitTerminalPromptEnvironmentDisable},
	})
	if executionError != nil {
		return "", executionError
	}
	return result.StandardOutput, nil
}
