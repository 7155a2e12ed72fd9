package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializeConfigurationAttachesCommandContext(t *testing.T) {
	projectRoot := t.TempDir()

	application, creationError := NewApplication()
	require.NoError(t, creationError)
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, rootCommand.PersistentFlags().Set(projectRootFlagNameConstant, projectRoot))
	require.NoError(t, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "Console"))
	require.NoError(t, application.initializeConfiguration(rootCommand))

	attachedRoot, rootAvailable := application.commandContextAccessor.ProjectRoot(rootCommand.Context())
	require.True(t, rootAvailable)
	require.Equal(t, filepath.Clean(projectRoot), attachedRoot)

	require.Equal(t, "console", application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationLeavesProjectRootUnsetByDefault(t *testing.T) {
	application, creationError := NewApplication()
	require.NoError(t, creationError)
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, application.initializeConfiguration(rootCommand))

	_, rootAvailable := application.commandContextAccessor.ProjectRoot(rootCommand.Context())
	require.False(t, rootAvailable)
	require.False(t, application.humanReadableLoggingEnabled())
	require.Equal(t, "info", application.configuration.Common.LogLevel)
	require.Equal(t, "tmp/core-migration-duplication", application.configuration.Migration.TemporaryBranch)
}
