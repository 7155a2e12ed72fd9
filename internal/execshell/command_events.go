package execshell

import (
	"strings"

	"go.uber.org/zap"
)

const (
	commandStartedLogMessageConstant         = "Executing shell command"
	commandCompletedLogMessageConstant       = "Shell command completed"
	commandFailedLogMessageConstant          = "Shell command exited with failure"
	commandExecutionFailedLogMessageConstant = "Shell command could not be executed"
	logFieldCommandNameConstant              = "command"
	logFieldCommandArgumentsConstant         = "arguments"
	logFieldWorkingDirectoryConstant         = "working_directory"
	logFieldExitCodeConstant                 = "exit_code"
	logFieldStandardErrorConstant            = "stderr"
)

// CommandEventObserver receives lifecycle notifications for git invocations.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that produced no exit code.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// newCommandEventObserver picks sentence-style messages for console output and fields otherwise.
func newCommandEventObserver(logger *zap.Logger, humanReadableLogging bool) CommandEventObserver {
	if humanReadableLogging {
		return humanReadableCommandEventObserver{logger: logger, formatter: CommandMessageFormatter{}}
	}
	return structuredCommandEventObserver{logger: logger}
}

type structuredCommandEventObserver struct {
	logger *zap.Logger
}

func (observer structuredCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (observer structuredCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Debug(
			commandCompletedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		)
		return
	}
	observer.logger.Warn(
		commandFailedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
	)
}

func (observer structuredCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(
		commandExecutionFailedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.Error(failure),
	)
}

type humanReadableCommandEventObserver struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

func (observer humanReadableCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Info(observer.formatter.BuildStartedMessage(command))
}

func (observer humanReadableCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Info(observer.formatter.BuildSuccessMessage(command))
		return
	}
	observer.logger.Warn(observer.formatter.BuildFailureMessage(command, result))
}

func (observer humanReadableCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(observer.formatter.BuildExecutionFailureMessage(command, failure))
}
