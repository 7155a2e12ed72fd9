package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/coremigration/cmd/cli"
	"github.com/temirov/coremigration/internal/migration"
)

const (
	testOldSourceRelativePath  = "app/src/main/kotlin/com/example/Widget.kt"
	testNewSourceRelativePath  = "lib/src/main/kotlin/com/example/Widget.kt"
	testSourceContent          = "package com.example\n\nimport kotlin.math.max\n\nclass Widget\n"
	testCustomLedgerPath       = "migration/ledger.csv"
	testConfigurationFileName  = "config.yaml"
	testConfigurationTemplate  = "common:\n  log_level: error\nmigration:\n  ledger_path: " + testCustomLedgerPath + "\n"
	testEnvironmentLedgerPath  = "COREMIGRATION_MIGRATION_LEDGER_PATH"
	testEnvironmentLedgerValue = "env/ledger.csv"
	testWarningSourceContent   = "package com.example\n\n@Deprecated(\n    message = \"app/src/main/kotlin/com/example/Widget.kt has been deprecated and copied to lib/src/main/kotlin/com/example/Widget.kt\",\n    level = DeprecationLevel.WARNING\n)\nclass Widget\n"
)

func TestApplicationRegistersMigrationCommands(t *testing.T) {
	application, creationError := cli.NewApplication()
	require.NoError(t, creationError)

	registered := map[string]bool{}
	for _, command := range application.RootCommand().Commands() {
		registered[command.Name()] = true
	}

	for _, expected := range []string{"duplicate", "mark-pairs", "duplicate-deprecate", "force-deprecate", "remove-deprecated", "apply"} {
		require.True(t, registered[expected], expected)
	}
}

func TestApplicationEmbeddedDefaultsMatchMigrationDefaults(t *testing.T) {
	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(t, "yaml", configurationType)

	rawConfiguration := map[string]any{}
	require.NoError(t, yaml.Unmarshal(content, &rawConfiguration))

	var decoded cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &decoded, ErrorUnused: true})
	require.NoError(t, decoderError)
	require.NoError(t, decoder.Decode(rawConfiguration))

	require.Equal(t, "info", decoded.Common.LogLevel)
	require.Equal(t, "structured", decoded.Common.LogFormat)
	require.Equal(t, migration.DefaultConfiguration(), decoded.Migration.Sanitize())
}

func TestApplicationVersionFlag(t *testing.T) {
	application, creationError := cli.NewApplication()
	require.NoError(t, creationError)

	output := &bytes.Buffer{}
	rootCommand := application.RootCommand()
	rootCommand.SetOut(output)
	rootCommand.SetArgs([]string{"--version"})
	require.NoError(t, application.Execute())
	require.Equal(t, "coremigration version: "+cli.Version+"\n", output.String())
}

func TestApplicationMarkPairsHonorsConfigurationSources(t *testing.T) {
	testCases := []struct {
		name               string
		useConfigFile      bool
		environmentLedger  string
		expectedLedgerPath string
	}{
		{name: "EmbeddedDefault", expectedLedgerPath: "app/src/test/resources/refactor/file_comparison_paths.csv"},
		{name: "ConfigurationFile", useConfigFile: true, expectedLedgerPath: testCustomLedgerPath},
		{name: "EnvironmentOverridesFile", useConfigFile: true, environmentLedger: testEnvironmentLedgerValue, expectedLedgerPath: testEnvironmentLedgerValue},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			projectRoot := t.TempDir()
			oldPath := writeProjectFile(t, projectRoot, testOldSourceRelativePath, testSourceContent)
			newPath := writeProjectFile(t, projectRoot, testNewSourceRelativePath, testSourceContent)

			arguments := []string{"mark-pairs", "--project-root", projectRoot, "--log-level", "error"}
			if testCase.useConfigFile {
				configurationPath := writeProjectFile(t, t.TempDir(), testConfigurationFileName, testConfigurationTemplate)
				arguments = append(arguments, "--config", configurationPath)
			}
			if len(testCase.environmentLedger) > 0 {
				t.Setenv(testEnvironmentLedgerPath, testCase.environmentLedger)
			}

			application, creationError := cli.NewApplication()
			require.NoError(t, creationError)
			output := &bytes.Buffer{}
			rootCommand := application.RootCommand()
			rootCommand.SetOut(output)
			rootCommand.SetArgs(append(arguments, oldPath, newPath))
			require.NoError(t, application.Execute())

			require.Contains(t, output.String(), "Marked 1 pair(s) as deprecated")
			ledgerContent, readError := os.ReadFile(filepath.Join(projectRoot, testCase.expectedLedgerPath))
			require.NoError(t, readError)
			require.Equal(t, testOldSourceRelativePath+","+testNewSourceRelativePath+"\n", string(ledgerContent))

			markedContent, markedReadError := os.ReadFile(oldPath)
			require.NoError(t, markedReadError)
			require.Contains(t, string(markedContent), "DeprecationLevel.WARNING")
		})
	}
}

func TestApplicationForceDeprecateEscalatesWarnings(t *testing.T) {
	projectRoot := t.TempDir()
	oldPath := writeProjectFile(t, projectRoot, testOldSourceRelativePath, testWarningSourceContent)

	application, creationError := cli.NewApplication()
	require.NoError(t, creationError)
	output := &bytes.Buffer{}
	rootCommand := application.RootCommand()
	rootCommand.SetOut(output)
	rootCommand.SetArgs([]string{"force-deprecate", "--project-root", projectRoot, "--log-level", "error", oldPath})
	require.NoError(t, application.Execute())

	require.Contains(t, output.String(), "Escalated 1 file(s) to DeprecationLevel.ERROR")
	escalatedContent, readError := os.ReadFile(oldPath)
	require.NoError(t, readError)
	require.Contains(t, string(escalatedContent), "level = DeprecationLevel.ERROR")
	require.Contains(t, string(escalatedContent), "is deprecated and must not be used. Please instead use")
}

func TestApplicationRejectsUnknownLogLevel(t *testing.T) {
	application, creationError := cli.NewApplication()
	require.NoError(t, creationError)

	rootCommand := application.RootCommand()
	rootCommand.SetOut(&bytes.Buffer{})
	rootCommand.SetArgs([]string{"force-deprecate", "--log-level", "chatty", filepath.Join(t.TempDir(), "A.kt")})
	executionError := application.Execute()
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unsupported log level")
}

func writeProjectFile(t *testing.T, root string, relativePath string, content string) string {
	t.Helper()
	absolutePath := filepath.Join(root, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
	require.NoError(t, os.WriteFile(absolutePath, []byte(content), 0o644))
	return absolutePath
}
