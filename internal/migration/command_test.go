package migration_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/filesystem"
	"github.com/temirov/coremigration/internal/migration"
	"github.com/temirov/coremigration/internal/utils"
)

func buildTestCommands(t *testing.T, fixtureRoot string, executor *simulatedGitExecutor, input string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	builder := migration.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() migration.Configuration {
			configuration := migration.DefaultConfiguration()
			configuration.ProjectRoot = fixtureRoot
			return configuration
		},
		GitExecutor: executor,
		FileSystem:  filesystem.OSFileSystem{},
	}

	commands, buildError := builder.BuildCommands()
	require.NoError(t, buildError)

	root := &cobra.Command{Use: "coremigration", SilenceErrors: true, SilenceUsage: true}
	root.AddCommand(commands...)

	output := &bytes.Buffer{}
	root.SetOut(output)
	root.SetErr(output)
	root.SetIn(strings.NewReader(input))
	return root, output
}

func TestDuplicateCommandDryRun(t *testing.T) {
	fixture := newServiceFixture(t, nil)
	fixture.writeSources(t)

	root, output := buildTestCommands(t, fixture.projectRoot, fixture.executor, "")
	root.SetArgs([]string{"duplicate", "--dry-run", "--to", fixture.path("lib/src/main/java/com/example/lib/pack1"), fixture.path(testOldARelative)})
	require.NoError(t, root.ExecuteContext(context.Background()))

	rendered := output.String()
	require.Contains(t, rendered, "Planned duplication of 1 file(s) via "+testTemporaryBranch)
	require.Contains(t, rendered, "  3. git mv -- "+testOldARelative+" "+testNewARelative)
}

func TestDuplicateCommandUsesProjectRootFromContext(t *testing.T) {
	fixture := newServiceFixture(t, nil)
	fixture.writeSources(t)

	root, output := buildTestCommands(t, t.TempDir(), fixture.executor, "")
	root.SetArgs([]string{"duplicate", "--dry-run", "--to", fixture.path("lib/src/main/java/com/example/lib/pack1"), fixture.path(testOldARelative)})
	executionContext := utils.NewCommandContextAccessor().WithProjectRoot(context.Background(), fixture.projectRoot)
	require.NoError(t, root.ExecuteContext(executionContext))
	require.Contains(t, output.String(), "git mv -- "+testOldARelative+" "+testNewARelative)
}

func TestDuplicateCommandRequiresDestination(t *testing.T) {
	fixture := newServiceFixture(t, nil)

	root, _ := buildTestCommands(t, fixture.projectRoot, fixture.executor, "")
	root.SetArgs([]string{"duplicate", fixture.path(testOldARelative)})
	executeError := root.ExecuteContext(context.Background())
	require.ErrorIs(t, executeError, migration.ErrInvalidSelection)
	require.Empty(t, fixture.executor.recorded)
}

func TestRemoveDeprecatedCommandPrompts(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		input         string
		expectDeleted bool
		expectedText  string
	}{
		{name: "PromptAccepted", input: "yes\n", expectDeleted: true, expectedText: "Deleted 1 deprecated file(s)"},
		{name: "PromptDeclined", input: "n\n", expectedText: "WARNING: Removal cancelled"},
		{name: "AssumeYesFlag", arguments: []string{"--yes"}, expectDeleted: true, expectedText: "ledger "},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newServiceFixture(t, nil)
			fixture.writeSources(t)
			writeSourceFile(t, fixture.ledgerFile(), testOldARelative+","+testNewARelative+"\n")

			root, output := buildTestCommands(t, fixture.projectRoot, fixture.executor, testCase.input)
			arguments := append([]string{"remove-deprecated"}, testCase.arguments...)
			root.SetArgs(append(arguments, fixture.path(testOldARelative)))
			require.NoError(t, root.ExecuteContext(context.Background()))

			require.Contains(t, output.String(), testCase.expectedText)
			if testCase.expectDeleted {
				require.NoFileExists(t, fixture.path(testOldARelative))
				require.Empty(t, readSourceFile(t, fixture.ledgerFile()))
				return
			}
			require.FileExists(t, fixture.path(testOldARelative))
		})
	}
}

func TestLegacyMarkPairsCommandIsDeprecated(t *testing.T) {
	builder := migration.CommandBuilder{}
	command := builder.BuildLegacyMarkPairsCommand()
	require.Equal(t, "duplicate-deprecate", command.Name())
	require.NotEmpty(t, command.Deprecated)

	markPairs := builder.BuildMarkPairsCommand()
	require.Equal(t, "mark-pairs", markPairs.Name())
	require.Empty(t, markPairs.Deprecated)
}

func TestForceDeprecateCommandReportsUnchangedFiles(t *testing.T) {
	fixture := newServiceFixture(t, nil)
	fixture.writeSources(t)

	root, output := buildTestCommands(t, fixture.projectRoot, fixture.executor, "")
	root.SetArgs([]string{"force-deprecate", fixture.path(testOldARelative)})
	require.NoError(t, root.ExecuteContext(context.Background()))
	require.Contains(t, output.String(), "Escalated 0 file(s) to DeprecationLevel.ERROR")
	require.Contains(t, output.String(), "WARNING: 1 file(s) had no deprecation block to escalate")
}

func TestDuplicateCommandReportsBranchStateOnFailure(t *testing.T) {
	fixture := newServiceFixture(t, nil)
	fixture.writeSources(t)
	fixture.executor.failSubcommand = "commit"

	root, output := buildTestCommands(t, fixture.projectRoot, fixture.executor, "")
	root.SetArgs([]string{"duplicate", "--to", fixture.path("lib/src/main/java/com/example/lib/pack1"), fixture.path(testOldARelative)})
	executeError := root.ExecuteContext(context.Background())
	require.Error(t, executeError)

	rendered := output.String()
	require.Contains(t, rendered, "ERROR: Duplication stopped at step 6 (commit)")
	require.Contains(t, rendered, "  checked out branch: "+testTemporaryBranch)
	require.Contains(t, rendered, "  return with: git checkout "+testOriginalBranchConstant)
	require.Contains(t, rendered, "  temporary branch "+testTemporaryBranch+" still exists")
	require.Contains(t, rendered, "  ledger was not updated")
}
