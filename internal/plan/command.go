package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/coremigration/internal/migration"
	"github.com/temirov/coremigration/internal/ui"
)

const (
	commandUseConstant              = "apply <plan.yaml>"
	commandShortDescriptionConstant = "Apply a YAML migration plan"
	commandLongDescriptionConstant  = "apply runs the duplicate, mark-pairs, force-deprecate and remove-deprecated steps listed in a YAML plan in order, stopping at the first failure. Relative paths are resolved against the plan file directory."
	dryRunFlagNameConstant          = "dry-run"
	dryRunFlagUsageConstant         = "Describe duplicate steps without changing anything"
	notifierCreationErrorTemplate   = "unable to construct notifier: %w"
	executorCreationErrorTemplate   = "unable to construct plan executor: %w"
)

// CommandBuilder assembles the apply Cobra command.
type CommandBuilder struct {
	Migration migration.CommandBuilder
}

// Build constructs the apply command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),
		RunE:          builder.run,
	}
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	dryRun, _ := command.Flags().GetBool(dryRunFlagNameConstant)

	configuration, loadError := LoadConfiguration(arguments[0])
	if loadError != nil {
		return loadError
	}

	workflows, logger, serviceError := builder.Migration.ResolveService(command)
	if serviceError != nil {
		return serviceError
	}

	notifier, notifierError := ui.NewWriterNotifier(command.OutOrStdout(), logger)
	if notifierError != nil {
		return fmt.Errorf(notifierCreationErrorTemplate, notifierError)
	}

	executor, executorError := NewExecutor(Dependencies{Workflows: workflows, Notifier: notifier, Logger: logger})
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplate, executorError)
	}

	return executor.Execute(command.Context(), configuration, ExecutionOptions{DryRun: dryRun})
}
