package plan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/migration"
	"github.com/temirov/coremigration/internal/ui"
)

const (
	workflowsNotConfiguredMessageConstant = "migration workflows not configured"
	notifierNotConfiguredMessageConstant  = "plan notifier not configured"
	stepFailureErrorTemplateConstant      = "plan step %d (%s) failed: %v"
	stepStartedLogMessageConstant         = "Applying plan step"
	planCompletedLogMessageConstant       = "Plan applied"
	logFieldStepNumberConstant            = "step"
	logFieldOperationConstant             = "operation"
	logFieldStepCountConstant             = "step_count"
	dryRunSkippedTitleTemplateConstant    = "Skipped step %d (%s) in dry run"
)

// ErrWorkflowsNotConfigured indicates that the executor was built without workflows.
var ErrWorkflowsNotConfigured = errors.New(workflowsNotConfiguredMessageConstant)

// ErrNotifierNotConfigured indicates that the executor was built without a notifier.
var ErrNotifierNotConfigured = errors.New(notifierNotConfiguredMessageConstant)

// StepFailureError reports the plan step that stopped execution.
type StepFailureError struct {
	Number    int
	Operation Operation
	Cause     error
}

// Error describes the failing step.
func (failure StepFailureError) Error() string {
	return fmt.Sprintf(stepFailureErrorTemplateConstant, failure.Number, failure.Operation, failure.Cause)
}

// Unwrap exposes the underlying failure.
func (failure StepFailureError) Unwrap() error {
	return failure.Cause
}

// Dependencies describes collaborators required by the Executor.
type Dependencies struct {
	Workflows migration.WorkflowExecutor
	Notifier  ui.Notifier
	Logger    *zap.Logger
}

// Executor applies plans step by step.
type Executor struct {
	workflows migration.WorkflowExecutor
	notifier  ui.Notifier
	logger    *zap.Logger
}

// ExecutionOptions adjusts how a plan is applied.
type ExecutionOptions struct {
	// DryRun forces every duplicate step to only describe its git steps and
	// skips the other operations after listing their files.
	DryRun bool
}

// NewExecutor constructs an Executor.
func NewExecutor(dependencies Dependencies) (*Executor, error) {
	if dependencies.Workflows == nil {
		return nil, ErrWorkflowsNotConfigured
	}
	if dependencies.Notifier == nil {
		return nil, ErrNotifierNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{workflows: dependencies.Workflows, notifier: dependencies.Notifier, logger: logger}, nil
}

// Execute runs the plan steps in order and stops at the first failure.
func (executor *Executor) Execute(executionContext context.Context, configuration Configuration, options ExecutionOptions) error {
	for stepIndex, step := range configuration.Steps {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		executor.logger.Info(
			stepStartedLogMessageConstant,
			zap.Int(logFieldStepNumberConstant, stepIndex+1),
			zap.String(logFieldOperationConstant, string(step.Operation)),
		)

		if options.DryRun && step.Operation != OperationDuplicate {
			notification, describeError := describeSkippedStep(configuration.BaseDirectory, stepIndex, step)
			if describeError != nil {
				return StepFailureError{Number: stepIndex + 1, Operation: step.Operation, Cause: describeError}
			}
			if notifyError := executor.notifier.Notify(notification); notifyError != nil {
				return notifyError
			}
			continue
		}

		result, stepError := executor.executeStep(executionContext, configuration.BaseDirectory, stepIndex, step, options)
		if stepError != nil {
			if duplicateResult, isDuplicate := result.(migration.DuplicateResult); isDuplicate {
				for _, notification := range migration.DuplicateFailureNotifications(duplicateResult) {
					if notifyError := executor.notifier.Notify(notification); notifyError != nil {
						return errors.Join(StepFailureError{Number: stepIndex + 1, Operation: step.Operation, Cause: stepError}, notifyError)
					}
				}
			}
			return StepFailureError{Number: stepIndex + 1, Operation: step.Operation, Cause: stepError}
		}

		for _, notification := range migration.Notifications(result) {
			if notifyError := executor.notifier.Notify(notification); notifyError != nil {
				return notifyError
			}
		}
	}

	executor.logger.Info(planCompletedLogMessageConstant, zap.Int(logFieldStepCountConstant, len(configuration.Steps)))
	return nil
}

func (executor *Executor) executeStep(executionContext context.Context, baseDirectory string, stepIndex int, step StepConfiguration, options ExecutionOptions) (any, error) {
	switch step.Operation {
	case OperationDuplicate:
		var stepOptions DuplicateStepOptions
		if decodeError := step.DecodeOptions(stepIndex, &stepOptions); decodeError != nil {
			return nil, decodeError
		}
		return executor.workflows.Duplicate(executionContext, migration.DuplicateOptions{
			Sources:     resolvePaths(baseDirectory, stepOptions.Sources),
			Destination: resolvePath(baseDirectory, stepOptions.Destination),
			DryRun:      stepOptions.DryRun || options.DryRun,
		})
	case OperationMarkPairs:
		var stepOptions FilesStepOptions
		if decodeError := step.DecodeOptions(stepIndex, &stepOptions); decodeError != nil {
			return nil, decodeError
		}
		return executor.workflows.MarkPairs(executionContext, migration.MarkPairsOptions{Files: resolvePaths(baseDirectory, stepOptions.Files)})
	case OperationForceDeprecate:
		var stepOptions FilesStepOptions
		if decodeError := step.DecodeOptions(stepIndex, &stepOptions); decodeError != nil {
			return nil, decodeError
		}
		return executor.workflows.ForceDeprecate(executionContext, migration.ForceDeprecateOptions{Files: resolvePaths(baseDirectory, stepOptions.Files)})
	case OperationRemoveDeprecated:
		var stepOptions FilesStepOptions
		if decodeError := step.DecodeOptions(stepIndex, &stepOptions); decodeError != nil {
			return nil, decodeError
		}
		return executor.workflows.RemoveDeprecated(executionContext, migration.RemoveDeprecatedOptions{
			Files:     resolvePaths(baseDirectory, stepOptions.Files),
			AssumeYes: stepOptions.Yes,
		})
	default:
		return nil, fmt.Errorf(configurationUnknownOperationTemplateConstant, stepIndex+1, step.Operation)
	}
}

func describeSkippedStep(baseDirectory string, stepIndex int, step StepConfiguration) (ui.Notification, error) {
	switch step.Operation {
	case OperationMarkPairs, OperationForceDeprecate, OperationRemoveDeprecated:
	default:
		return ui.Notification{}, fmt.Errorf(configurationUnknownOperationTemplateConstant, stepIndex+1, step.Operation)
	}

	var stepOptions FilesStepOptions
	if decodeError := step.DecodeOptions(stepIndex, &stepOptions); decodeError != nil {
		return ui.Notification{}, decodeError
	}
	return ui.Notification{
		Severity: ui.SeverityInformation,
		Title:    fmt.Sprintf(dryRunSkippedTitleTemplateConstant, stepIndex+1, step.Operation),
		Details:  resolvePaths(baseDirectory, stepOptions.Files),
	}, nil
}

func resolvePaths(baseDirectory string, paths []string) []string {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved = append(resolved, resolvePath(baseDirectory, path))
	}
	return resolved
}

func resolvePath(baseDirectory string, path string) string {
	if len(path) == 0 || len(baseDirectory) == 0 || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDirectory, filepath.FromSlash(path))
}
