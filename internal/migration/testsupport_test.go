package migration_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coremigration/internal/execshell"
)

const (
	testOriginalBranchConstant = "main"
	testRunIdentifierConstant  = "run-123"
)

// simulatedGitExecutor records git invocations and emulates the file effects of the
// commands used by the duplicate workflow.
type simulatedGitExecutor struct {
	t               *testing.T
	projectRoot     string
	currentBranch   string
	dirtyWorktree   bool
	stagedPaths     []string
	topLevelFailure error
	failSubcommand  string
	snapshots       map[string]string
	recorded        [][]string
}

func newSimulatedGitExecutor(t *testing.T, projectRoot string) *simulatedGitExecutor {
	return &simulatedGitExecutor{t: t, projectRoot: projectRoot, currentBranch: testOriginalBranchConstant, snapshots: map[string]string{}}
}

func (executor *simulatedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	arguments := details.Arguments
	executor.recorded = append(executor.recorded, append([]string{}, arguments...))

	command := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
	if len(executor.failSubcommand) > 0 && arguments[0] == executor.failSubcommand {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: execshell.ExecutionResult{ExitCode: 1, StandardError: "fatal: simulated"}}
	}

	switch arguments[0] {
	case "rev-parse":
		if arguments[1] == "--show-toplevel" {
			if executor.topLevelFailure != nil {
				return execshell.ExecutionResult{}, executor.topLevelFailure
			}
			return execshell.ExecutionResult{StandardOutput: executor.projectRoot + "\n"}, nil
		}
		return execshell.ExecutionResult{StandardOutput: executor.currentBranch + "\n"}, nil
	case "diff":
		return execshell.ExecutionResult{StandardOutput: strings.Join(executor.stagedPaths, "\n")}, nil
	case "status":
		if executor.dirtyWorktree {
			return execshell.ExecutionResult{StandardOutput: " M app/build.gradle\n"}, nil
		}
		return execshell.ExecutionResult{}, nil
	case "mv":
		oldPath := filepath.Join(details.WorkingDirectory, filepath.FromSlash(arguments[2]))
		newPath := filepath.Join(details.WorkingDirectory, filepath.FromSlash(arguments[3]))
		content, readError := os.ReadFile(oldPath)
		require.NoError(executor.t, readError)
		executor.snapshots[arguments[2]] = string(content)
		require.NoError(executor.t, os.Rename(oldPath, newPath))
	case "checkout":
		if len(arguments) > 2 && arguments[1] == "HEAD~" {
			for _, relativePath := range arguments[3:] {
				restoredPath := filepath.Join(details.WorkingDirectory, filepath.FromSlash(relativePath))
				require.NoError(executor.t, os.WriteFile(restoredPath, []byte(executor.snapshots[relativePath]), 0o644))
			}
		}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *simulatedGitExecutor) subcommands() []string {
	subcommands := make([]string, 0, len(executor.recorded))
	for _, arguments := range executor.recorded {
		subcommands = append(subcommands, strings.Join(arguments, " "))
	}
	return subcommands
}

type scriptedPrompter struct {
	response bool
	prompts  []string
}

func (prompter *scriptedPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.response, nil
}

func writeSourceFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readSourceFile(t *testing.T, path string) string {
	t.Helper()
	content, readError := os.ReadFile(path)
	require.NoError(t, readError)
	return string(content)
}
