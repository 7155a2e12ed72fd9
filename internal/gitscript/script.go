package gitscript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/execshell"
)

const (
	gitExecutorNotConfiguredMessageConstant = "git executor not configured"
	loggerNotConfiguredMessageConstant      = "script logger not configured"
	emptyStepMessageConstant                = "step defines neither git arguments nor an action"
	stepErrorTemplateConstant               = "step %d (%s) failed after %d completed steps: %v"
	describeGitStepTemplateConstant         = "%d. git %s"
	describeActionStepTemplateConstant      = "%d. %s"
	argumentsJoinSeparatorConstant          = " "
	gitTerminalPromptEnvironmentName        = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisable     = "0"
	stepStartedLogMessageConstant           = "Running migration step"
	stepFailedLogMessageConstant            = "Migration step failed"
	scriptCompletedLogMessageConstant       = "Migration script completed"
	logFieldStepIndexConstant               = "step_index"
	logFieldStepNameConstant                = "step"
	logFieldStepCountConstant               = "step_count"
	logFieldWorkingDirectoryConstant        = "working_directory"
)

// ErrGitExecutorNotConfigured indicates that the runner was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)

// ErrLoggerNotConfigured indicates that the runner was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrEmptyStep indicates a step with nothing to execute.
var ErrEmptyStep = errors.New(emptyStepMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Action performs in-process work between git invocations.
type Action func(executionContext context.Context) error

// Step is a single unit of a Script. Exactly one of Arguments or Action is expected.
type Step struct {
	Name      string
	Arguments []string
	Action    Action
}

// Script is an ordered list of steps executed in one working directory.
type Script struct {
	WorkingDirectory string
	Steps            []Step
}

// StepError reports the step that aborted a script.
type StepError struct {
	Index     int
	Name      string
	Completed int
	Cause     error
}

// Error describes the failing step.
func (stepError StepError) Error() string {
	return fmt.Sprintf(stepErrorTemplateConstant, stepError.Index+1, stepError.Name, stepError.Completed, stepError.Cause)
}

// Unwrap exposes the underlying failure.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}

// Runner executes scripts.
type Runner struct {
	executor GitExecutor
	logger   *zap.Logger
}

// NewRunner constructs a Runner.
func NewRunner(executor GitExecutor, logger *zap.Logger) (*Runner, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &Runner{executor: executor, logger: logger}, nil
}

// Run executes every step in order and returns the number of completed steps.
func (runner *Runner) Run(executionContext context.Context, script Script) (int, error) {
	for stepIndex, step := range script.Steps {
		if contextError := executionContext.Err(); contextError != nil {
			return stepIndex, StepError{Index: stepIndex, Name: step.Name, Completed: stepIndex, Cause: contextError}
		}

		runner.logger.Debug(
			stepStartedLogMessageConstant,
			zap.Int(logFieldStepIndexConstant, stepIndex),
			zap.String(logFieldStepNameConstant, step.Name),
			zap.String(logFieldWorkingDirectoryConstant, script.WorkingDirectory),
		)

		if stepError := runner.runStep(executionContext, script.WorkingDirectory, step); stepError != nil {
			runner.logger.Debug(
				stepFailedLogMessageConstant,
				zap.Int(logFieldStepIndexConstant, stepIndex),
				zap.String(logFieldStepNameConstant, step.Name),
				zap.Error(stepError),
			)
			return stepIndex, StepError{Index: stepIndex, Name: step.Name, Completed: stepIndex, Cause: stepError}
		}
	}

	runner.logger.Debug(scriptCompletedLogMessageConstant, zap.Int(logFieldStepCountConstant, len(script.Steps)))
	return len(script.Steps), nil
}

func (runner *Runner) runStep(executionContext context.Context, workingDirectory string, step Step) error {
	if step.Action != nil {
		return step.Action(executionContext)
	}
	if len(step.Arguments) == 0 {
		return ErrEmptyStep
	}

	_, executionError := runner.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            step.Arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentName: gitTerminalPromptEnvironmentDisable},
	})
	return executionError
}

// Describe renders one numbered line per step.
func Describe(script Script) []string {
	lines := make([]string, 0, len(script.Steps))
	for stepIndex, step := range script.Steps {
		if step.Action == nil && len(step.Arguments) > 0 {
			lines = append(lines, fmt.Sprintf(describeGitStepTemplateConstant, stepIndex+1, strings.Join(step.Arguments, argumentsJoinSeparatorConstant)))
			continue
		}
		lines = append(lines, fmt.Sprintf(describeActionStepTemplateConstant, stepIndex+1, step.Name))
	}
	return lines
}
