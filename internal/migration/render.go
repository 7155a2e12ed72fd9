package migration

import (
	"fmt"

	"github.com/temirov/coremigration/internal/ui"
)

const (
	duplicatePlannedTitleTemplateConstant   = "Planned duplication of %d file(s) via %s"
	duplicateCompletedTitleTemplateConstant = "Duplicated %d file(s) into branch %s"
	duplicatedFileLineTemplateConstant      = "%s -> %s"
	ledgerSummaryLineTemplateConstant       = "ledger %s: %d row(s) %s"
	ledgerAddedVerbConstant                 = "added"
	ledgerRemovedVerbConstant               = "removed"
	markPairsTitleTemplateConstant          = "Marked %d pair(s) as deprecated"
	markedPairLineTemplateConstant          = "%s -> %s (%d block(s))"
	markedPairFromLineTemplateConstant      = "%s -> %s (%d block(s) from line %d)"
	unrecordedFilesTitleTemplateConstant    = "%d deleted file(s) had no ledger row"
	forceDeprecateTitleTemplateConstant     = "Escalated %d file(s) to DeprecationLevel.ERROR"
	unchangedFilesTitleTemplateConstant     = "%d file(s) had no deprecation block to escalate"
	removalCancelledTitleConstant           = "Removal cancelled, no files were deleted"
	removalCompletedTitleTemplateConstant   = "Deleted %d deprecated file(s)"
	duplicateFailedTitleTemplateConstant    = "Duplication stopped at step %d (%s)"
	failureCauseLineTemplateConstant        = "cause: %s"
	checkedOutBranchLineTemplateConstant    = "checked out branch: %s"
	returnToBranchLineTemplateConstant      = "return with: git checkout %s"
	temporaryBranchRemainsLineTemplate      = "temporary branch %s still exists"
	ledgerNotUpdatedLineConstant            = "ledger was not updated"
)

func duplicateNotifications(result DuplicateResult) []ui.Notification {
	if result.DryRun {
		return []ui.Notification{{
			Severity: ui.SeverityInformation,
			Title:    fmt.Sprintf(duplicatePlannedTitleTemplateConstant, len(result.Files), result.TemporaryBranch),
			Details:  result.PlannedSteps,
		}}
	}

	details := make([]string, 0, len(result.Files)+1)
	for _, file := range result.Files {
		details = append(details, fmt.Sprintf(duplicatedFileLineTemplateConstant, file.OldPath, file.NewPath))
	}
	details = append(details, fmt.Sprintf(ledgerSummaryLineTemplateConstant, result.LedgerPath, len(result.LedgerEntries), ledgerAddedVerbConstant))
	return []ui.Notification{{
		Severity: ui.SeverityInformation,
		Title:    fmt.Sprintf(duplicateCompletedTitleTemplateConstant, len(result.Files), result.OriginalBranch),
		Details:  details,
	}}
}

// DuplicateFailureNotifications reports where an aborted duplication left the repository.
// Results without a recorded failure produce no notifications.
func DuplicateFailureNotifications(result DuplicateResult) []ui.Notification {
	failure := result.Failure
	if failure == nil {
		return nil
	}

	details := []string{
		fmt.Sprintf(failureCauseLineTemplateConstant, failure.Cause),
		fmt.Sprintf(checkedOutBranchLineTemplateConstant, failure.CheckedOutBranch),
	}
	if failure.CheckedOutBranch != result.OriginalBranch {
		details = append(details, fmt.Sprintf(returnToBranchLineTemplateConstant, result.OriginalBranch))
	}
	if failure.TemporaryBranchRemains {
		details = append(details, fmt.Sprintf(temporaryBranchRemainsLineTemplate, result.TemporaryBranch))
	}
	details = append(details, ledgerNotUpdatedLineConstant)
	return []ui.Notification{{
		Severity: ui.SeverityError,
		Title:    fmt.Sprintf(duplicateFailedTitleTemplateConstant, failure.StepNumber, failure.StepName),
		Details:  details,
	}}
}

func markPairsNotifications(result MarkPairsResult) []ui.Notification {
	details := make([]string, 0, len(result.Pairs)+1)
	for _, pair := range result.Pairs {
		if pair.FirstBlockLine > 0 {
			details = append(details, fmt.Sprintf(markedPairFromLineTemplateConstant, pair.OldPath, pair.NewPath, pair.BlocksInserted, pair.FirstBlockLine))
			continue
		}
		details = append(details, fmt.Sprintf(markedPairLineTemplateConstant, pair.OldPath, pair.NewPath, pair.BlocksInserted))
	}
	details = append(details, fmt.Sprintf(ledgerSummaryLineTemplateConstant, result.LedgerPath, len(result.LedgerEntries), ledgerAddedVerbConstant))
	return []ui.Notification{{
		Severity: ui.SeverityInformation,
		Title:    fmt.Sprintf(markPairsTitleTemplateConstant, len(result.Pairs)),
		Details:  details,
	}}
}

func forceDeprecateNotifications(result ForceDeprecateResult) []ui.Notification {
	notifications := []ui.Notification{{
		Severity: ui.SeverityInformation,
		Title:    fmt.Sprintf(forceDeprecateTitleTemplateConstant, len(result.Escalated)),
		Details:  result.Escalated,
	}}
	if len(result.Unchanged) > 0 {
		notifications = append(notifications, ui.Notification{
			Severity: ui.SeverityWarning,
			Title:    fmt.Sprintf(unchangedFilesTitleTemplateConstant, len(result.Unchanged)),
			Details:  result.Unchanged,
		})
	}
	return notifications
}

func removeDeprecatedNotifications(result RemoveDeprecatedResult) []ui.Notification {
	if result.Cancelled {
		return []ui.Notification{{Severity: ui.SeverityWarning, Title: removalCancelledTitleConstant}}
	}
	details := append([]string{}, result.Deleted...)
	details = append(details, fmt.Sprintf(ledgerSummaryLineTemplateConstant, result.LedgerPath, len(result.LedgerEntries), ledgerRemovedVerbConstant))
	notifications := []ui.Notification{{
		Severity: ui.SeverityInformation,
		Title:    fmt.Sprintf(removalCompletedTitleTemplateConstant, len(result.Deleted)),
		Details:  details,
	}}
	if len(result.Unrecorded) > 0 {
		notifications = append(notifications, ui.Notification{
			Severity: ui.SeverityWarning,
			Title:    fmt.Sprintf(unrecordedFilesTitleTemplateConstant, len(result.Unrecorded)),
			Details:  result.Unrecorded,
		})
	}
	return notifications
}

// Notifications renders a workflow result for the operator.
func Notifications(result any) []ui.Notification {
	switch typed := result.(type) {
	case DuplicateResult:
		return duplicateNotifications(typed)
	case MarkPairsResult:
		return markPairsNotifications(typed)
	case ForceDeprecateResult:
		return forceDeprecateNotifications(typed)
	case RemoveDeprecatedResult:
		return removeDeprecatedNotifications(typed)
	default:
		return nil
	}
}
