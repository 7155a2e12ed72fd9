package migration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/deprecation"
	"github.com/temirov/coremigration/internal/gitscript"
	"github.com/temirov/coremigration/internal/ledger"
	"github.com/temirov/coremigration/internal/traversal"
)

const (
	sourcesFieldNameConstant               = "sources"
	destinationFieldNameConstant           = "destination"
	destinationRequiredMessageConstant     = "destination directory must be provided"
	movedCommitLineTemplateConstant        = "Moved %s to %s"
	restoredCommitLineTemplateConstant     = "Restored %s"
	mergeCommitMessageConstant             = "merged the restored original files"
	createDirectoriesStepNameConstant      = "create destination directories"
	rewritePackagesStepNameConstant        = "rewrite package declarations"
	annotateFilesStepNameConstant          = "annotate deprecated files"
	updateLedgerStepNameConstant           = "update ledger"
	checkWorktreeErrorTemplateConstant     = "unable to verify worktree: %w"
	stagedChangesErrorTemplateConstant     = "%w: %s"
	currentBranchErrorTemplateConstant     = "unable to determine current branch: %w"
	traverseSourcesErrorTemplateConstant   = "unable to collect source files: %w"
	duplicationFailedErrorTemplateConstant = "duplication failed: %w"
	duplicationStartedLogMessageConstant   = "Duplicating files"
	duplicationPlannedLogMessageConstant   = "Duplication planned"
	duplicationCompletedLogMessageConstant = "Duplication completed"
	duplicationFailedLogMessageConstant    = "Duplication failed"
	logFieldOriginalBranchConstant         = "original_branch"
	logFieldTemporaryBranchConstant        = "temporary_branch"
	logFieldPairCountConstant              = "pair_count"
	logFieldDestinationConstant            = "destination"
	logFieldFailedStepConstant             = "failed_step"
	logFieldCompletedStepsConstant         = "completed_steps"
)

// DuplicateOptions configures the duplicate workflow.
type DuplicateOptions struct {
	Sources     []string
	Destination string
	DryRun      bool
}

// DuplicatedFile records one duplicated source.
type DuplicatedFile struct {
	OldPath          string
	NewPath          string
	PackageRewritten bool
	BlocksInserted   int
	FirstBlockLine   int
}

// DuplicateResult captures the observable outcome of a duplication.
type DuplicateResult struct {
	RunIdentifier   string
	ProjectRoot     string
	OriginalBranch  string
	TemporaryBranch string
	Files           []DuplicatedFile
	LedgerPath      string
	LedgerEntries   []ledger.Entry
	PlannedSteps    []string
	DryRun          bool
	Failure         *DuplicateFailure
}

// DuplicateFailure describes where an aborted duplication left the repository.
type DuplicateFailure struct {
	StepNumber             int
	StepName               string
	Cause                  string
	CheckedOutBranch       string
	TemporaryBranchRemains bool
}

type duplicationCheckpoints struct {
	switchBackStep   int
	deleteBranchStep int
}

type duplicationPlan struct {
	projectRoot string
	pairs       []traversal.Pair
	files       []DuplicatedFile
	oldPaths    []string
	newPaths    []string
	ledger      *ledger.Ledger
	result      *DuplicateResult
}

// Duplicate copies the selected sources into the destination directory while keeping git
// history for both copies, annotates the originals as deprecated and records the pairs in
// the ledger.
func (service *Service) Duplicate(executionContext context.Context, options DuplicateOptions) (DuplicateResult, error) {
	if len(options.Sources) == 0 {
		return DuplicateResult{}, InvalidInputError{FieldName: sourcesFieldNameConstant, Message: traversal.ErrEmptySelection.Error()}
	}
	if len(strings.TrimSpace(options.Destination)) == 0 {
		return DuplicateResult{}, InvalidInputError{FieldName: destinationFieldNameConstant, Message: destinationRequiredMessageConstant}
	}

	runIdentifier := service.runIdentifierProvider()
	logger := service.logger.With(zap.String(logFieldRunIdentifierConstant, runIdentifier))

	projectRoot, projectRootError := service.resolveProjectRoot(executionContext)
	if projectRootError != nil {
		return DuplicateResult{}, projectRootError
	}

	destinationDirectory, destinationError := service.resolveDestinationDirectory(options.Destination)
	if destinationError != nil {
		return DuplicateResult{}, destinationError
	}

	if service.configuration.RequireCleanWorktree {
		clean, cleanError := service.repositoryInspector.CheckCleanWorktree(executionContext, projectRoot)
		if cleanError != nil {
			return DuplicateResult{}, fmt.Errorf(checkWorktreeErrorTemplateConstant, cleanError)
		}
		if !clean {
			return DuplicateResult{}, ErrDirtyWorktree
		}
	}

	stagedPaths, stagedError := service.repositoryInspector.ListStagedPaths(executionContext, projectRoot)
	if stagedError != nil {
		return DuplicateResult{}, fmt.Errorf(checkWorktreeErrorTemplateConstant, stagedError)
	}
	if len(stagedPaths) > 0 {
		return DuplicateResult{}, fmt.Errorf(stagedChangesErrorTemplateConstant, ErrStagedChanges, strings.Join(stagedPaths, ", "))
	}

	originalBranch, branchError := service.repositoryInspector.GetCurrentBranch(executionContext, projectRoot)
	if branchError != nil {
		return DuplicateResult{}, fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}

	pairs, traverseError := service.traverser.Traverse(options.Sources, destinationDirectory)
	if traverseError != nil {
		if errors.Is(traverseError, traversal.ErrEmptySelection) {
			return DuplicateResult{}, InvalidInputError{FieldName: sourcesFieldNameConstant, Message: traverseError.Error()}
		}
		return DuplicateResult{}, fmt.Errorf(traverseSourcesErrorTemplateConstant, traverseError)
	}
	if len(pairs) == 0 {
		return DuplicateResult{}, InvalidInputError{FieldName: sourcesFieldNameConstant, Message: traversal.ErrEmptySelection.Error()}
	}

	fileLedger, ledgerError := service.openLedger(projectRoot)
	if ledgerError != nil {
		return DuplicateResult{}, ledgerError
	}

	result := DuplicateResult{
		RunIdentifier:   runIdentifier,
		ProjectRoot:     projectRoot,
		OriginalBranch:  originalBranch,
		TemporaryBranch: service.configuration.TemporaryBranch,
		LedgerPath:      fileLedger.Path(),
		DryRun:          options.DryRun,
	}

	plan, planError := service.planDuplication(projectRoot, pairs, fileLedger, &result)
	if planError != nil {
		return DuplicateResult{}, planError
	}

	script, checkpoints := service.buildDuplicationScript(plan, originalBranch)
	result.PlannedSteps = gitscript.Describe(script)

	if options.DryRun {
		result.Files = plan.files
		logger.Info(
			duplicationPlannedLogMessageConstant,
			zap.String(logFieldProjectRootConstant, projectRoot),
			zap.String(logFieldDestinationConstant, destinationDirectory),
			zap.Int(logFieldPairCountConstant, len(pairs)),
		)
		return result, nil
	}

	logger.Info(
		duplicationStartedLogMessageConstant,
		zap.String(logFieldProjectRootConstant, projectRoot),
		zap.String(logFieldDestinationConstant, destinationDirectory),
		zap.String(logFieldOriginalBranchConstant, originalBranch),
		zap.String(logFieldTemporaryBranchConstant, service.configuration.TemporaryBranch),
		zap.Int(logFieldPairCountConstant, len(pairs)),
	)

	if _, runError := service.runner.Run(executionContext, script); runError != nil {
		fields := []zap.Field{zap.Error(runError)}
		var stepError gitscript.StepError
		if errors.As(runError, &stepError) {
			fields = append(fields, zap.String(logFieldFailedStepConstant, stepError.Name), zap.Int(logFieldCompletedStepsConstant, stepError.Completed))
			result.Failure = describeDuplicationFailure(stepError, checkpoints, originalBranch, service.configuration.TemporaryBranch)
		}
		logger.Error(duplicationFailedLogMessageConstant, fields...)
		return result, fmt.Errorf(duplicationFailedErrorTemplateConstant, runError)
	}

	result.Files = plan.files
	logger.Info(duplicationCompletedLogMessageConstant, zap.Int(logFieldPairCountConstant, len(pairs)))
	return result, nil
}

// resolveDestinationDirectory returns the absolute destination directory. A file
// destination resolves to its parent directory; a missing path is used as a directory.
func (service *Service) resolveDestinationDirectory(destination string) (string, error) {
	absoluteDestination, absoluteError := service.fileSystem.Abs(strings.TrimSpace(destination))
	if absoluteError != nil {
		return "", fmt.Errorf(resolvePathErrorTemplateConstant, destination, absoluteError)
	}
	info, statError := service.fileSystem.Stat(absoluteDestination)
	if statError == nil && !info.IsDir() {
		return filepath.Dir(absoluteDestination), nil
	}
	return absoluteDestination, nil
}

func (service *Service) planDuplication(projectRoot string, pairs []traversal.Pair, fileLedger *ledger.Ledger, result *DuplicateResult) (duplicationPlan, error) {
	plan := duplicationPlan{
		projectRoot: projectRoot,
		pairs:       pairs,
		files:       make([]DuplicatedFile, 0, len(pairs)),
		oldPaths:    make([]string, 0, len(pairs)),
		newPaths:    make([]string, 0, len(pairs)),
		ledger:      fileLedger,
		result:      result,
	}
	for _, pair := range pairs {
		oldRepositoryPath, oldPathError := repositoryPath(projectRoot, pair.OldPath)
		if oldPathError != nil {
			return duplicationPlan{}, oldPathError
		}
		newRepositoryPath, newPathError := repositoryPath(projectRoot, pair.NewPath)
		if newPathError != nil {
			return duplicationPlan{}, newPathError
		}
		plan.oldPaths = append(plan.oldPaths, oldRepositoryPath)
		plan.newPaths = append(plan.newPaths, newRepositoryPath)
		plan.files = append(plan.files, DuplicatedFile{OldPath: oldRepositoryPath, NewPath: newRepositoryPath})
	}
	return plan, nil
}

// describeDuplicationFailure derives the checked out branch from how many steps completed:
// the temporary branch is current from its creation until the switch back, and it exists
// until the delete step succeeds.
func describeDuplicationFailure(stepError gitscript.StepError, checkpoints duplicationCheckpoints, originalBranch string, temporaryBranch string) *DuplicateFailure {
	checkedOutBranch := originalBranch
	if stepError.Completed > 0 && stepError.Completed <= checkpoints.switchBackStep {
		checkedOutBranch = temporaryBranch
	}
	return &DuplicateFailure{
		StepNumber:             stepError.Index + 1,
		StepName:               stepError.Name,
		Cause:                  stepError.Cause.Error(),
		CheckedOutBranch:       checkedOutBranch,
		TemporaryBranchRemains: stepError.Completed > 0 && stepError.Completed <= checkpoints.deleteBranchStep,
	}
}

func (service *Service) buildDuplicationScript(plan duplicationPlan, originalBranch string) (gitscript.Script, duplicationCheckpoints) {
	temporaryBranch := service.configuration.TemporaryBranch

	movedLines := make([]string, 0, len(plan.pairs))
	restoredLines := make([]string, 0, len(plan.pairs))
	for index := range plan.pairs {
		movedLines = append(movedLines, fmt.Sprintf(movedCommitLineTemplateConstant, plan.oldPaths[index], plan.newPaths[index]))
		restoredLines = append(restoredLines, fmt.Sprintf(restoredCommitLineTemplateConstant, plan.oldPaths[index]))
	}

	steps := []gitscript.Step{
		gitscript.CreateBranchStep(temporaryBranch),
		gitscript.ActionStep(createDirectoriesStepNameConstant, func(context.Context) error {
			return service.traverser.EnsureParents(plan.pairs)
		}),
	}
	for index := range plan.pairs {
		steps = append(steps, gitscript.MoveStep(plan.oldPaths[index], plan.newPaths[index]))
	}
	steps = append(steps,
		gitscript.ActionStep(rewritePackagesStepNameConstant, func(context.Context) error {
			return service.rewritePackages(plan)
		}),
		gitscript.StageStep(plan.newPaths...),
		gitscript.CommitStep(movedLines, append(append([]string{}, plan.oldPaths...), plan.newPaths...)...),
		gitscript.RestoreFromParentStep(plan.oldPaths...),
		gitscript.ActionStep(annotateFilesStepNameConstant, func(context.Context) error {
			return service.annotateOriginals(plan)
		}),
		gitscript.StageStep(plan.oldPaths...),
		gitscript.CommitStep(restoredLines, plan.oldPaths...),
	)
	checkpoints := duplicationCheckpoints{switchBackStep: len(steps)}
	steps = append(steps,
		gitscript.SwitchBranchStep(originalBranch),
		gitscript.MergeNoFastForwardStep(temporaryBranch, mergeCommitMessageConstant),
	)
	checkpoints.deleteBranchStep = len(steps)
	steps = append(steps,
		gitscript.DeleteBranchStep(temporaryBranch),
		gitscript.ActionStep(updateLedgerStepNameConstant, func(context.Context) error {
			return service.recordDuplication(plan)
		}),
	)

	return gitscript.Script{WorkingDirectory: plan.projectRoot, Steps: steps}, checkpoints
}

func (service *Service) rewritePackages(plan duplicationPlan) error {
	for index, pair := range plan.pairs {
		packageName, hasPackage := service.mapper.PackageForPath(projectRelativePath(plan.projectRoot, pair.NewPath))
		if !hasPackage {
			continue
		}
		content, readError := service.readFile(pair.NewPath)
		if readError != nil {
			return readError
		}
		rewritten, changed := deprecation.RewritePackage(content, packageName)
		if !changed {
			continue
		}
		if writeError := service.writeFile(pair.NewPath, rewritten); writeError != nil {
			return writeError
		}
		plan.files[index].PackageRewritten = true
	}
	return nil
}

func (service *Service) annotateOriginals(plan duplicationPlan) error {
	for index, pair := range plan.pairs {
		content, readError := service.readFile(pair.OldPath)
		if readError != nil {
			return readError
		}
		notice := deprecation.Notice{
			OldPath: service.ledgerPath(plan.projectRoot, pair.OldPath),
			NewPath: service.ledgerPath(plan.projectRoot, pair.NewPath),
		}
		marked := deprecation.Mark(content, notice)
		plan.files[index].BlocksInserted = marked.Inserted
		plan.files[index].FirstBlockLine = firstBlockLine(marked)
		if marked.Inserted == 0 {
			continue
		}
		if writeError := service.writeFile(pair.OldPath, marked.Content); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (service *Service) recordDuplication(plan duplicationPlan) error {
	entries := make([]ledger.Entry, 0, len(plan.pairs))
	for _, pair := range plan.pairs {
		entries = append(entries, ledger.Entry{
			OldPath: service.ledgerPath(plan.projectRoot, pair.OldPath),
			NewPath: service.ledgerPath(plan.projectRoot, pair.NewPath),
		})
	}
	added, appendError := plan.ledger.Append(entries)
	if appendError != nil {
		return fmt.Errorf(updateLedgerErrorTemplateConstant, appendError)
	}
	plan.result.LedgerEntries = added
	return nil
}
