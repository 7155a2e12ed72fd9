package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesMigrationCommands(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		stage           messageStage
		result          ExecutionResult
		failure         error
		expectedMessage string
	}{
		{
			name:            "CreateBranch",
			arguments:       []string{"checkout", "-b", "tmp/core-migration-duplication"},
			stage:           messageStageStart,
			expectedMessage: "Creating and switching to branch tmp/core-migration-duplication in /workspace/repo",
		},
		{
			name:            "SwitchBranch",
			arguments:       []string{"checkout", "feature"},
			stage:           messageStageSuccess,
			expectedMessage: "/workspace/repo now on branch feature",
		},
		{
			name:            "RestoreFromParent",
			arguments:       []string{"checkout", "HEAD~", "--", "app/A.kt", "app/B.kt"},
			stage:           messageStageStart,
			expectedMessage: "Restoring app/A.kt, app/B.kt from HEAD~ in /workspace/repo",
		},
		{
			name:            "DeleteBranch",
			arguments:       []string{"branch", "--delete", "tmp/dup"},
			stage:           messageStageSuccess,
			expectedMessage: "Removed local branch tmp/dup in /workspace/repo",
		},
		{
			name:            "Stage",
			arguments:       []string{"add", "--", "lib/A.kt"},
			stage:           messageStageStart,
			expectedMessage: "Staging lib/A.kt in /workspace/repo",
		},
		{
			name:            "CommitUsesSubject",
			arguments:       []string{"commit", "-m", "Moved a to b\nMoved c to d"},
			stage:           messageStageSuccess,
			expectedMessage: "Created commit in /workspace/repo with message \"Moved a to b\"",
		},
		{
			name:            "MergeFailure",
			arguments:       []string{"merge", "--no-ff", "tmp/dup", "-m", "merged"},
			stage:           messageStageFailure,
			result:          ExecutionResult{ExitCode: 1, StandardError: "conflict\n"},
			expectedMessage: "Failed to merge tmp/dup in /workspace/repo (exit code 1: conflict)",
		},
		{
			name:            "CurrentBranchDetached",
			arguments:       []string{"rev-parse", "--abbrev-ref", "HEAD"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "HEAD\n"},
			expectedMessage: "/workspace/repo is in a detached HEAD state",
		},
		{
			name:            "TopLevelExecutionFailure",
			arguments:       []string{"rev-parse", "--show-toplevel"},
			stage:           messageStageExecutionFailure,
			failure:         errors.New("boom"),
			expectedMessage: "Unable to locate repository root for /workspace/repo: boom",
		},
		{
			name:            "UnknownSubcommandFallsBack",
			arguments:       []string{"log", "--oneline"},
			stage:           messageStageStart,
			expectedMessage: "Running git log --oneline (in /workspace/repo)",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{
				Name:    CommandGit,
				Details: CommandDetails{Arguments: testCase.arguments, WorkingDirectory: "/workspace/repo"},
			}
			require.Equal(t, testCase.expectedMessage, formatter.buildMessage(command, testCase.result, testCase.failure, testCase.stage))
		})
	}
}

func TestCommandMessageFormatterUsesDefaultWorkingDirectoryLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"status", "--porcelain"}}}

	require.Equal(t, "Reviewing working tree status in current directory", formatter.BuildStartedMessage(command))
}
