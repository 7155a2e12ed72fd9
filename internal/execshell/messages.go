package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	pathListJoinSeparatorConstant           = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	argumentSeparatorConstant               = "--"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitWorkTreeFlagConstant           = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitShowTopLevelFlagConstant       = "--show-toplevel"
	gitHeadReferenceConstant          = "HEAD"
	gitStatusSubcommandNameConstant   = "status"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitNewBranchFlagConstant          = "-b"
	gitBranchSubcommandNameConstant   = "branch"
	gitDeleteFlagConstant             = "--delete"
	gitMoveSubcommandNameConstant     = "mv"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitMergeSubcommandNameConstant    = "merge"
	gitMessageFlagConstant            = "-m"
)

const (
	gitWorkTreeStartTemplateConstant                  = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant                = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant                = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant       = "Could not analyze %s: %s"
	gitTopLevelStartTemplateConstant                  = "Locating repository root for %s"
	gitTopLevelSuccessTemplateConstant                = "Repository root for %s is %s"
	gitTopLevelFailureTemplateConstant                = "Failed to locate repository root for %s (exit code %d%s)"
	gitTopLevelExecutionFailureTemplateConstant       = "Unable to locate repository root for %s: %s"
	gitCurrentBranchStartTemplateConstant             = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant           = "Current branch in %s is %s"
	gitCurrentBranchDetachedSuccessTemplateConstant   = "%s is in a detached HEAD state"
	gitCurrentBranchFailureTemplateConstant           = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant  = "Unable to identify current branch in %s: %s"
	gitStatusStartTemplateConstant                    = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                  = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                  = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant         = "Unable to review working tree status in %s: %s"
	gitCheckoutStartTemplateConstant                  = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant                = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant                = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant       = "Unable to switch %s to branch %s: %s"
	gitCheckoutCreateStartTemplateConstant            = "Creating and switching to branch %s in %s"
	gitCheckoutCreateSuccessTemplateConstant          = "Created branch %s in %s"
	gitCheckoutCreateFailureTemplateConstant          = "Failed to create branch %s in %s (exit code %d%s)"
	gitCheckoutCreateExecutionFailureTemplateConstant = "Unable to create branch %s in %s: %s"
	gitRestoreStartTemplateConstant                   = "Restoring %s from %s in %s"
	gitRestoreSuccessTemplateConstant                 = "Restored %s from %s in %s"
	gitRestoreFailureTemplateConstant                 = "Failed to restore %s from %s in %s (exit code %d%s)"
	gitRestoreExecutionFailureTemplateConstant        = "Unable to restore %s from %s in %s: %s"
	gitBranchDeletionStartTemplateConstant            = "Removing local branch %s in %s"
	gitBranchDeletionSuccessTemplateConstant          = "Removed local branch %s in %s"
	gitBranchDeletionFailureTemplateConstant          = "Failed to remove local branch %s in %s (exit code %d%s)"
	gitBranchDeletionExecutionFailureTemplateConstant = "Unable to remove local branch %s in %s: %s"
	gitMoveStartTemplateConstant                      = "Moving %s to %s in %s"
	gitMoveSuccessTemplateConstant                    = "Moved %s to %s in %s"
	gitMoveFailureTemplateConstant                    = "Failed to move %s to %s in %s (exit code %d%s)"
	gitMoveExecutionFailureTemplateConstant           = "Unable to move %s to %s in %s: %s"
	gitAddStartTemplateConstant                       = "Staging %s in %s"
	gitAddSuccessTemplateConstant                     = "Staged %s in %s"
	gitAddFailureTemplateConstant                     = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant            = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant                    = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                  = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                  = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant         = "Unable to create commit in %s with message %q: %s"
	gitMergeStartTemplateConstant                     = "Merging %s in %s"
	gitMergeSuccessTemplateConstant                   = "Merged %s in %s"
	gitMergeFailureTemplateConstant                   = "Failed to merge %s in %s (exit code %d%s)"
	gitMergeExecutionFailureTemplateConstant          = "Unable to merge %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			stageTemplates{
				start:            gitStatusStartTemplateConstant,
				success:          gitStatusSuccessTemplateConstant,
				failure:          gitStatusFailureTemplateConstant,
				executionFailure: gitStatusExecutionFailureTemplateConstant,
			},
			formatter.describeWorkingDirectory(command))
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		return formatter.describeGitBranchMessage(command, result, failure, stage)
	case gitMoveSubcommandNameConstant:
		return formatter.describeGitMoveMessage(command, result, failure, stage)
	case gitAddSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			stageTemplates{
				start:            gitAddStartTemplateConstant,
				success:          gitAddSuccessTemplateConstant,
				failure:          gitAddFailureTemplateConstant,
				executionFailure: gitAddExecutionFailureTemplateConstant,
			},
			formatter.joinPaths(formatter.extractPathArguments(command.Details.Arguments[1:])),
			formatter.describeWorkingDirectory(command))
	case gitCommitSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			stageTemplates{
				start:            gitCommitStartTemplateConstant,
				success:          gitCommitSuccessTemplateConstant,
				failure:          gitCommitFailureTemplateConstant,
				executionFailure: gitCommitExecutionFailureTemplateConstant,
			},
			formatter.describeWorkingDirectory(command),
			formatter.extractCommitSubject(command.Details.Arguments))
	case gitMergeSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure,
			stageTemplates{
				start:            gitMergeStartTemplateConstant,
				success:          gitMergeSuccessTemplateConstant,
				failure:          gitMergeFailureTemplateConstant,
				executionFailure: gitMergeExecutionFailureTemplateConstant,
			},
			formatter.ensureValue(formatter.extractFirstNonFlagArgument(command.Details.Arguments[1:], gitMessageFlagConstant)),
			formatter.describeWorkingDirectory(command))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// describeStage renders the template for the stage; failure templates receive the exit code
// and standard error suffix after the supplied values.
func (formatter CommandMessageFormatter) describeStage(stage messageStage, result ExecutionResult, failure error, templates stageTemplates, values ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		failureValues := append(append([]any{}, values...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureValues...)
	default:
		executionValues := append(append([]any{}, values...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, executionValues...)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitWorkTreeFlagConstant) {
		return formatter.describeStage(stage, result, failure, stageTemplates{
			start:            gitWorkTreeStartTemplateConstant,
			success:          gitWorkTreeSuccessTemplateConstant,
			failure:          gitWorkTreeFailureTemplateConstant,
			executionFailure: gitWorkTreeExecutionFailureTemplateConstant,
		}, workingDirectory)
	}

	if containsArgument(arguments, gitShowTopLevelFlagConstant) {
		if stage == messageStageSuccess {
			return fmt.Sprintf(gitTopLevelSuccessTemplateConstant, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		}
		return formatter.describeStage(stage, result, failure, stageTemplates{
			start:            gitTopLevelStartTemplateConstant,
			failure:          gitTopLevelFailureTemplateConstant,
			executionFailure: gitTopLevelExecutionFailureTemplateConstant,
		}, workingDirectory)
	}

	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		if stage == messageStageSuccess {
			trimmed := strings.TrimSpace(result.StandardOutput)
			if strings.EqualFold(trimmed, gitHeadReferenceConstant) || len(trimmed) == 0 {
				return fmt.Sprintf(gitCurrentBranchDetachedSuccessTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, trimmed)
		}
		return formatter.describeStage(stage, result, failure, stageTemplates{
			start:            gitCurrentBranchStartTemplateConstant,
			failure:          gitCurrentBranchFailureTemplateConstant,
			executionFailure: gitCurrentBranchExecutionFailureTemplateConstant,
		}, workingDirectory)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments[1:]
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitNewBranchFlagConstant) {
		branchName := formatter.ensureValue(findFlagValue(arguments, gitNewBranchFlagConstant))
		return formatter.describeStage(stage, result, failure, stageTemplates{
			start:            gitCheckoutCreateStartTemplateConstant,
			success:          gitCheckoutCreateSuccessTemplateConstant,
			failure:          gitCheckoutCreateFailureTemplateConstant,
			executionFailure: gitCheckoutCreateExecutionFailureTemplateConstant,
		}, branchName, workingDirectory)
	}

	if containsArgument(arguments, argumentSeparatorConstant) {
		revision := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments))
		paths := formatter.joinPaths(formatter.extractPathArguments(arguments))
		return formatter.describeStage(stage, result, failure, stageTemplates{
			start:            gitRestoreStartTemplateConstant,
			success:          gitRestoreSuccessTemplateConstant,
			failure:          gitRestoreFailureTemplateConstant,
			executionFailure: gitRestoreExecutionFailureTemplateConstant,
		}, paths, revision, workingDirectory)
	}

	branchName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments))
	return formatter.describeStage(stage, result, failure, stageTemplates{
		start:            gitCheckoutStartTemplateConstant,
		success:          gitCheckoutSuccessTemplateConstant,
		failure:          gitCheckoutFailureTemplateConstant,
		executionFailure: gitCheckoutExecutionFailureTemplateConstant,
	}, workingDirectory, branchName)
}

func (formatter CommandMessageFormatter) describeGitBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments[1:]
	if !containsArgument(arguments, gitDeleteFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	branchName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments))
	return formatter.describeStage(stage, result, failure, stageTemplates{
		start:            gitBranchDeletionStartTemplateConstant,
		success:          gitBranchDeletionSuccessTemplateConstant,
		failure:          gitBranchDeletionFailureTemplateConstant,
		executionFailure: gitBranchDeletionExecutionFailureTemplateConstant,
	}, branchName, formatter.describeWorkingDirectory(command))
}

func (formatter CommandMessageFormatter) describeGitMoveMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	paths := formatter.extractPathArguments(command.Details.Arguments[1:])
	if len(paths) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	return formatter.describeStage(stage, result, failure, stageTemplates{
		start:            gitMoveStartTemplateConstant,
		success:          gitMoveSuccessTemplateConstant,
		failure:          gitMoveFailureTemplateConstant,
		executionFailure: gitMoveExecutionFailureTemplateConstant,
	}, paths[0], paths[len(paths)-1], formatter.describeWorkingDirectory(command))
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// extractFirstNonFlagArgument returns the first argument that is neither a flag nor the
// value of one of the supplied valued flags.
func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string, valuedFlags ...string) string {
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if containsArgument(valuedFlags, trimmed) {
			index++
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

// extractPathArguments returns the arguments after "--" when present, otherwise every
// non-flag argument.
func (formatter CommandMessageFormatter) extractPathArguments(arguments []string) []string {
	for index, argument := range arguments {
		if strings.TrimSpace(argument) == argumentSeparatorConstant {
			return append([]string{}, arguments[index+1:]...)
		}
	}

	paths := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		paths = append(paths, trimmed)
	}
	return paths
}

func (formatter CommandMessageFormatter) joinPaths(paths []string) string {
	if len(paths) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return strings.Join(paths, pathListJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) extractCommitSubject(arguments []string) string {
	message := findFlagValue(arguments, gitMessageFlagConstant)
	if len(message) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	subject, _, _ := strings.Cut(message, "\n")
	return subject
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
