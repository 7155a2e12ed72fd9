package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/ledger"
)

const (
	confirmationPromptTemplateConstant = "You have selected %d %s. %s will be permanently deleted and cannot be undone! Continue? [y/N] "
	singleFileNounConstant             = "file"
	pluralFileNounConstant             = "files"
	singleFileSubjectConstant          = "It"
	pluralFileSubjectConstant          = "They"
	confirmationErrorTemplateConstant  = "unable to confirm deletion: %w"
	removeFileErrorTemplateConstant    = "unable to delete %s: %w"
	ledgerMissingErrorTemplateConstant = "%w: %s"
	ledgerUnreadableLogMessageConstant = "Ledger rows could not be parsed, skipping recorded path check"
	promptRequiredMessageConstant      = "confirmation required: rerun with --yes or answer the prompt"
	removalCancelledLogMessageConstant = "Removal cancelled"
	removalCompletedLogMessageConstant = "Removed deprecated files"
)

// ErrConfirmationRequired indicates that no prompter is available and deletion was not pre-approved.
var ErrConfirmationRequired = errors.New(promptRequiredMessageConstant)

// RemoveDeprecatedOptions configures the remove-deprecated workflow.
type RemoveDeprecatedOptions struct {
	Files     []string
	AssumeYes bool
}

// RemoveDeprecatedResult captures the outcome of removing deprecated files. Unrecorded
// lists the ledger paths of deleted files that had no ledger row.
type RemoveDeprecatedResult struct {
	Cancelled     bool
	Deleted       []string
	Unrecorded    []string
	LedgerPath    string
	LedgerEntries []ledger.Entry
}

// RemoveDeprecated deletes the selected files after confirmation and drops their rows
// from the ledger.
func (service *Service) RemoveDeprecated(executionContext context.Context, options RemoveDeprecatedOptions) (RemoveDeprecatedResult, error) {
	files, resolveError := service.resolveFiles(filesFieldNameConstant, options.Files)
	if resolveError != nil {
		return RemoveDeprecatedResult{}, resolveError
	}

	projectRoot, projectRootError := service.resolveProjectRoot(executionContext)
	if projectRootError != nil {
		return RemoveDeprecatedResult{}, projectRootError
	}

	fileLedger, ledgerError := service.openLedger(projectRoot)
	if ledgerError != nil {
		return RemoveDeprecatedResult{}, ledgerError
	}
	exists, existsError := fileLedger.Exists()
	if existsError != nil {
		return RemoveDeprecatedResult{}, fmt.Errorf(updateLedgerErrorTemplateConstant, existsError)
	}
	if !exists {
		return RemoveDeprecatedResult{}, fmt.Errorf(ledgerMissingErrorTemplateConstant, ledger.ErrLedgerNotFound, fileLedger.Path())
	}

	recordedOldPaths, entriesAvailable := service.recordedOldPaths(fileLedger)

	result := RemoveDeprecatedResult{LedgerPath: fileLedger.Path()}

	if !options.AssumeYes {
		confirmed, confirmError := service.confirmRemoval(len(files))
		if confirmError != nil {
			return result, confirmError
		}
		if !confirmed {
			result.Cancelled = true
			service.logger.Info(removalCancelledLogMessageConstant)
			return result, nil
		}
	}

	var removalErrors []error
	removedLedgerPaths := make([]string, 0, len(files))
	for _, file := range files {
		if removeError := service.fileSystem.Remove(file); removeError != nil {
			removalErrors = append(removalErrors, fmt.Errorf(removeFileErrorTemplateConstant, file, removeError))
			continue
		}
		result.Deleted = append(result.Deleted, file)
		removedLedgerPath := service.ledgerPath(projectRoot, file)
		removedLedgerPaths = append(removedLedgerPaths, removedLedgerPath)
		if _, recorded := recordedOldPaths[removedLedgerPath]; entriesAvailable && !recorded {
			result.Unrecorded = append(result.Unrecorded, removedLedgerPath)
		}
	}

	if len(removedLedgerPaths) > 0 {
		removedEntries, ledgerUpdateError := fileLedger.RemoveByOldPaths(removedLedgerPaths)
		if ledgerUpdateError != nil {
			removalErrors = append(removalErrors, fmt.Errorf(updateLedgerErrorTemplateConstant, ledgerUpdateError))
		}
		result.LedgerEntries = removedEntries
	}

	service.logger.Info(
		removalCompletedLogMessageConstant,
		zap.Strings(logFieldPathsConstant, result.Deleted),
		zap.Int(logFieldLedgerEntriesConstant, len(result.LedgerEntries)),
	)
	return result, errors.Join(removalErrors...)
}

// recordedOldPaths indexes the old paths recorded in the ledger. Unparseable ledgers are
// still updated line by line, so a parse failure only disables the check.
func (service *Service) recordedOldPaths(fileLedger *ledger.Ledger) (map[string]struct{}, bool) {
	entries, entriesError := fileLedger.Entries()
	if entriesError != nil {
		service.logger.Warn(ledgerUnreadableLogMessageConstant, zap.String(logFieldPathConstant, fileLedger.Path()), zap.Error(entriesError))
		return nil, false
	}
	oldPaths := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		oldPaths[entry.OldPath] = struct{}{}
	}
	return oldPaths, true
}

func (service *Service) confirmRemoval(fileCount int) (bool, error) {
	if service.prompter == nil {
		return false, ErrConfirmationRequired
	}

	noun := pluralFileNounConstant
	subject := pluralFileSubjectConstant
	if fileCount == 1 {
		noun = singleFileNounConstant
		subject = singleFileSubjectConstant
	}

	confirmed, confirmError := service.prompter.Confirm(fmt.Sprintf(confirmationPromptTemplateConstant, fileCount, noun, subject))
	if confirmError != nil {
		return false, fmt.Errorf(confirmationErrorTemplateConstant, confirmError)
	}
	return confirmed, nil
}
