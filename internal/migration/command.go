package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/execshell"
	"github.com/temirov/coremigration/internal/filesystem"
	"github.com/temirov/coremigration/internal/gitrepo"
	"github.com/temirov/coremigration/internal/gitscript"
	"github.com/temirov/coremigration/internal/prompt"
	"github.com/temirov/coremigration/internal/ui"
	"github.com/temirov/coremigration/internal/utils"
)

const (
	duplicateCommandUseConstant              = "duplicate --to <directory> <source>..."
	duplicateCommandShortDescriptionConstant = "Duplicate files into another module while keeping git history"
	duplicateCommandLongDescriptionConstant  = "duplicate moves the selected files and directories into the destination on a temporary branch, restores the originals from the previous commit, marks them @Deprecated, merges the branch back and records every pair in the ledger."
	destinationFlagNameConstant              = "to"
	destinationFlagUsageConstant             = "Destination directory (a file selects its parent directory)"
	dryRunFlagNameConstant                   = "dry-run"
	dryRunFlagUsageConstant                  = "Print the planned git steps without changing anything"

	markPairsCommandUseConstant              = "mark-pairs <old>... <new>..."
	markPairsCommandShortDescriptionConstant = "Mark already copied files as deprecated and record the pairs"
	markPairsCommandLongDescriptionConstant  = "mark-pairs takes an even number of files: the first half are the old files and the second half their copies, matched by file name. Each old file receives a @Deprecated block naming its replacement and every pair is appended to the ledger."

	legacyMarkPairsCommandUseConstant        = "duplicate-deprecate <old>... <new>..."
	legacyMarkPairsCommandDeprecationMessage = "use \"duplicate\" to copy files with history or \"mark-pairs\" for files that are already copied"

	forceDeprecateCommandUseConstant              = "force-deprecate <file>..."
	forceDeprecateCommandShortDescriptionConstant = "Escalate generated deprecations from warnings to errors"
	forceDeprecateCommandLongDescriptionConstant  = "force-deprecate rewrites DeprecationLevel.WARNING blocks generated by this tool to DeprecationLevel.ERROR so that remaining usages fail to compile."

	removeDeprecatedCommandUseConstant              = "remove-deprecated <file>..."
	removeDeprecatedCommandShortDescriptionConstant = "Delete deprecated files and drop them from the ledger"
	removeDeprecatedCommandLongDescriptionConstant  = "remove-deprecated permanently deletes the selected files after confirmation and removes their rows from the ledger."
	assumeYesFlagNameConstant                       = "yes"
	assumeYesFlagShorthandConstant                  = "y"
	assumeYesFlagUsageConstant                      = "Delete without asking for confirmation"

	destinationFlagRequiredMessageConstant = "destination directory is required (--to)"
	repositoryManagerCreationErrorTemplate = "unable to construct repository manager: %w"
	serviceCreationErrorTemplate           = "unable to construct migration service: %w"
	notifierCreationErrorTemplate          = "unable to construct notifier: %w"
	notificationErrorTemplate              = "unable to report result: %w"
	logFieldConfigurationFileConstant      = "config_file"
)

// WorkflowExecutor runs the migration workflows.
type WorkflowExecutor interface {
	Duplicate(executionContext context.Context, options DuplicateOptions) (DuplicateResult, error)
	MarkPairs(executionContext context.Context, options MarkPairsOptions) (MarkPairsResult, error)
	ForceDeprecate(executionContext context.Context, options ForceDeprecateOptions) (ForceDeprecateResult, error)
	RemoveDeprecated(executionContext context.Context, options RemoveDeprecatedOptions) (RemoveDeprecatedResult, error)
}

// ServiceProvider constructs a workflow executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (WorkflowExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the migration Cobra commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	GitExecutor                  gitscript.GitExecutor
	FileSystem                   filesystem.FileSystem
	Prompter                     prompt.ConfirmationPrompter
	ServiceProvider              ServiceProvider
}

// BuildCommands constructs every migration command.
func (builder *CommandBuilder) BuildCommands() ([]*cobra.Command, error) {
	return []*cobra.Command{
		builder.BuildDuplicateCommand(),
		builder.BuildMarkPairsCommand(),
		builder.BuildLegacyMarkPairsCommand(),
		builder.BuildForceDeprecateCommand(),
		builder.BuildRemoveDeprecatedCommand(),
	}, nil
}

// BuildDuplicateCommand constructs the duplicate command.
func (builder *CommandBuilder) BuildDuplicateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           duplicateCommandUseConstant,
		Short:         duplicateCommandShortDescriptionConstant,
		Long:          duplicateCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          builder.runDuplicate,
	}
	command.Flags().String(destinationFlagNameConstant, "", destinationFlagUsageConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	return command
}

// BuildMarkPairsCommand constructs the mark-pairs command.
func (builder *CommandBuilder) BuildMarkPairsCommand() *cobra.Command {
	return &cobra.Command{
		Use:           markPairsCommandUseConstant,
		Short:         markPairsCommandShortDescriptionConstant,
		Long:          markPairsCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MinimumNArgs(2),
		RunE:          builder.runMarkPairs,
	}
}

// BuildLegacyMarkPairsCommand constructs the deprecated duplicate-deprecate alias of mark-pairs.
func (builder *CommandBuilder) BuildLegacyMarkPairsCommand() *cobra.Command {
	command := builder.BuildMarkPairsCommand()
	command.Use = legacyMarkPairsCommandUseConstant
	command.Deprecated = legacyMarkPairsCommandDeprecationMessage
	return command
}

// BuildForceDeprecateCommand constructs the force-deprecate command.
func (builder *CommandBuilder) BuildForceDeprecateCommand() *cobra.Command {
	return &cobra.Command{
		Use:           forceDeprecateCommandUseConstant,
		Short:         forceDeprecateCommandShortDescriptionConstant,
		Long:          forceDeprecateCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          builder.runForceDeprecate,
	}
}

// BuildRemoveDeprecatedCommand constructs the remove-deprecated command.
func (builder *CommandBuilder) BuildRemoveDeprecatedCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           removeDeprecatedCommandUseConstant,
		Short:         removeDeprecatedCommandShortDescriptionConstant,
		Long:          removeDeprecatedCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          builder.runRemoveDeprecated,
	}
	command.Flags().BoolP(assumeYesFlagNameConstant, assumeYesFlagShorthandConstant, false, assumeYesFlagUsageConstant)
	return command
}

func (builder *CommandBuilder) runDuplicate(command *cobra.Command, arguments []string) error {
	destination, _ := command.Flags().GetString(destinationFlagNameConstant)
	if len(strings.TrimSpace(destination)) == 0 {
		return InvalidInputError{FieldName: destinationFieldNameConstant, Message: destinationFlagRequiredMessageConstant}
	}
	dryRun, _ := command.Flags().GetBool(dryRunFlagNameConstant)

	service, logger, serviceError := builder.ResolveService(command)
	if serviceError != nil {
		return serviceError
	}

	result, duplicateError := service.Duplicate(command.Context(), DuplicateOptions{Sources: arguments, Destination: destination, DryRun: dryRun})
	if duplicateError != nil {
		if notifyError := builder.notify(command, logger, DuplicateFailureNotifications(result)); notifyError != nil {
			return errors.Join(duplicateError, notifyError)
		}
		return duplicateError
	}
	return builder.notify(command, logger, Notifications(result))
}

func (builder *CommandBuilder) runMarkPairs(command *cobra.Command, arguments []string) error {
	service, logger, serviceError := builder.ResolveService(command)
	if serviceError != nil {
		return serviceError
	}

	result, markError := service.MarkPairs(command.Context(), MarkPairsOptions{Files: arguments})
	if markError != nil {
		return markError
	}
	return builder.notify(command, logger, Notifications(result))
}

func (builder *CommandBuilder) runForceDeprecate(command *cobra.Command, arguments []string) error {
	service, logger, serviceError := builder.ResolveService(command)
	if serviceError != nil {
		return serviceError
	}

	result, escalateError := service.ForceDeprecate(command.Context(), ForceDeprecateOptions{Files: arguments})
	if escalateError != nil && len(result.Escalated) == 0 && len(result.Unchanged) == 0 {
		return escalateError
	}
	if notifyError := builder.notify(command, logger, Notifications(result)); notifyError != nil {
		return notifyError
	}
	return escalateError
}

func (builder *CommandBuilder) runRemoveDeprecated(command *cobra.Command, arguments []string) error {
	assumeYes, _ := command.Flags().GetBool(assumeYesFlagNameConstant)

	service, logger, serviceError := builder.ResolveService(command)
	if serviceError != nil {
		return serviceError
	}

	result, removeError := service.RemoveDeprecated(command.Context(), RemoveDeprecatedOptions{Files: arguments, AssumeYes: assumeYes})
	if removeError != nil && len(result.Deleted) == 0 {
		return removeError
	}
	if notifyError := builder.notify(command, logger, Notifications(result)); notifyError != nil {
		return notifyError
	}
	return removeError
}

// ResolveService wires the default collaborators around the configured overrides.
func (builder *CommandBuilder) ResolveService(command *cobra.Command) (WorkflowExecutor, *zap.Logger, error) {
	logger := builder.resolveLogger()
	contextAccessor := utils.NewCommandContextAccessor()
	if configurationFilePath, available := contextAccessor.ConfigurationFilePath(command.Context()); available {
		logger = logger.With(zap.String(logFieldConfigurationFileConstant, configurationFilePath))
	}

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, nil, fmt.Errorf(repositoryManagerCreationErrorTemplate, managerError)
	}

	dependencies := ServiceDependencies{
		Logger:              logger,
		FileSystem:          builder.resolveFileSystem(),
		GitExecutor:         executor,
		RepositoryInspector: repositoryManager,
		Prompter:            builder.resolvePrompter(command),
		Configuration:       builder.resolveConfiguration(command),
	}

	var service WorkflowExecutor
	var serviceError error
	if builder.ServiceProvider != nil {
		service, serviceError = builder.ServiceProvider(dependencies)
	} else {
		service, serviceError = NewService(dependencies)
	}
	if serviceError != nil {
		return nil, nil, fmt.Errorf(serviceCreationErrorTemplate, serviceError)
	}
	return service, logger, nil
}

func (builder *CommandBuilder) notify(command *cobra.Command, logger *zap.Logger, notifications []ui.Notification) error {
	notifier, notifierError := ui.NewWriterNotifier(command.OutOrStdout(), logger)
	if notifierError != nil {
		return fmt.Errorf(notifierCreationErrorTemplate, notifierError)
	}
	for _, notification := range notifications {
		if notifyError := notifier.Notify(notification); notifyError != nil {
			return fmt.Errorf(notificationErrorTemplate, notifyError)
		}
	}
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (gitscript.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveFileSystem() filesystem.FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) prompt.ConfirmationPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.ErrOrStderr())
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if projectRoot, available := utils.NewCommandContextAccessor().ProjectRoot(command.Context()); available {
		configuration.ProjectRoot = projectRoot
	}
	return configuration.Sanitize()
}
