package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/utils"
)

const (
	testLogMessageConstant = "logger_factory_test_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name           string
		level          utils.LogLevel
		format         utils.LogFormat
		expectError    bool
		expectJSON     bool
		expectFragment string
	}{
		{name: "structured_debug", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectJSON: true, expectFragment: `"level":"info"`},
		{name: "console_info", level: utils.LogLevelInfo, format: utils.LogFormatConsole, expectFragment: "INFO"},
		{name: "warn_suppresses_info", level: utils.LogLevelWarn, format: utils.LogFormatConsole},
		{name: "unknown_level", level: utils.LogLevel("chatty"), format: utils.LogFormatStructured, expectError: true},
		{name: "unknown_format", level: utils.LogLevelInfo, format: utils.LogFormat("xml"), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			capturedOutput, logger, creationError := captureStandardError(testInstance, func() (*zap.Logger, error) {
				return utils.NewLoggerFactory().CreateLogger(testCase.level, testCase.format)
			})
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)

			trimmedOutput := bytes.TrimSpace(capturedOutput)
			if testCase.level == utils.LogLevelWarn {
				require.Empty(testInstance, trimmedOutput)
				return
			}
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Contains(testInstance, string(trimmedOutput), testCase.expectFragment)
			require.Equal(testInstance, testCase.expectJSON, json.Valid(trimmedOutput))
		})
	}
}

// captureStandardError builds a logger while standard error points at a pipe, logs one
// info message through it and returns what reached the pipe.
func captureStandardError(testInstance *testing.T, build func() (*zap.Logger, error)) ([]byte, *zap.Logger, error) {
	testInstance.Helper()

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	logger, buildError := build()
	os.Stderr = originalStandardError

	if buildError == nil {
		logger.Info(testLogMessageConstant)
		require.NoError(testInstance, utils.SyncLogger(logger))
	}

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return capturedOutput, logger, buildError
}

func TestParseLogSettings(testInstance *testing.T) {
	testCases := []struct {
		name           string
		levelValue     string
		formatValue    string
		expectedLevel  utils.LogLevel
		expectedFormat utils.LogFormat
		expectError    bool
	}{
		{name: "canonical", levelValue: "debug", formatValue: "structured", expectedLevel: utils.LogLevelDebug, expectedFormat: utils.LogFormatStructured},
		{name: "mixed_case_padded", levelValue: " WARN ", formatValue: "Console", expectedLevel: utils.LogLevelWarn, expectedFormat: utils.LogFormatConsole},
		{name: "unknown_level", levelValue: "verbose", formatValue: "console", expectError: true},
		{name: "unknown_format", levelValue: "info", formatValue: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			level, levelError := utils.ParseLogLevel(testCase.levelValue)
			format, formatError := utils.ParseLogFormat(testCase.formatValue)
			if testCase.expectError {
				require.Error(testInstance, errors.Join(levelError, formatError))
				return
			}
			require.NoError(testInstance, levelError)
			require.NoError(testInstance, formatError)
			require.Equal(testInstance, testCase.expectedLevel, level)
			require.Equal(testInstance, testCase.expectedFormat, format)
		})
	}
}

func TestSyncLoggerAcceptsNil(testInstance *testing.T) {
	require.NoError(testInstance, utils.SyncLogger(nil))
}
