package migration

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/deprecation"
	"github.com/temirov/coremigration/internal/ledger"
)

const (
	filesFieldNameConstant               = "files"
	oddSelectionMessageTemplateConstant  = "expected an even number of files, got %d"
	markPairsCompletedLogMessageConstant = "Marked file pairs"
	logFieldAnnotatedCountConstant       = "annotated_count"
	logFieldLedgerEntriesConstant        = "ledger_entries"
)

// MarkPairsOptions configures the mark-pairs workflow. The first half of Files are the
// old files and the second half their new counterparts.
type MarkPairsOptions struct {
	Files []string
}

// MarkedPair records the outcome for one old/new pair. FirstBlockLine is the one-based
// line where the first inserted block starts, or zero when nothing was inserted.
type MarkedPair struct {
	OldPath        string
	NewPath        string
	BlocksInserted int
	FirstBlockLine int
}

// MarkPairsResult captures the outcome of the mark-pairs workflow.
type MarkPairsResult struct {
	Pairs         []MarkedPair
	LedgerPath    string
	LedgerEntries []ledger.Entry
}

// MarkPairs annotates already copied old files as deprecated and records each pair in the
// ledger. Pairs are matched by identical file name; every selection is validated before
// any file is written.
func (service *Service) MarkPairs(executionContext context.Context, options MarkPairsOptions) (MarkPairsResult, error) {
	files, resolveError := service.resolveFiles(filesFieldNameConstant, options.Files)
	if resolveError != nil {
		return MarkPairsResult{}, resolveError
	}
	if len(files)%2 != 0 {
		return MarkPairsResult{}, InvalidInputError{FieldName: filesFieldNameConstant, Message: fmt.Sprintf(oddSelectionMessageTemplateConstant, len(files))}
	}

	pairs, pairError := pairByName(files)
	if pairError != nil {
		return MarkPairsResult{}, pairError
	}

	projectRoot, projectRootError := service.resolveProjectRoot(executionContext)
	if projectRootError != nil {
		return MarkPairsResult{}, projectRootError
	}

	fileLedger, ledgerError := service.openLedger(projectRoot)
	if ledgerError != nil {
		return MarkPairsResult{}, ledgerError
	}

	result := MarkPairsResult{Pairs: make([]MarkedPair, 0, len(pairs)), LedgerPath: fileLedger.Path()}
	entries := make([]ledger.Entry, 0, len(pairs))
	for _, pair := range pairs {
		notice := deprecation.Notice{
			OldPath: service.ledgerPath(projectRoot, pair[0]),
			NewPath: service.ledgerPath(projectRoot, pair[1]),
		}

		content, readError := service.readFile(pair[0])
		if readError != nil {
			return result, readError
		}
		marked := deprecation.Mark(content, notice)
		if marked.Inserted > 0 {
			if writeError := service.writeFile(pair[0], marked.Content); writeError != nil {
				return result, writeError
			}
		}

		result.Pairs = append(result.Pairs, MarkedPair{
			OldPath:        notice.OldPath,
			NewPath:        notice.NewPath,
			BlocksInserted: marked.Inserted,
			FirstBlockLine: firstBlockLine(marked),
		})
		entries = append(entries, ledger.Entry{OldPath: notice.OldPath, NewPath: notice.NewPath})
	}

	added, appendError := fileLedger.Append(entries)
	if appendError != nil {
		return result, fmt.Errorf(updateLedgerErrorTemplateConstant, appendError)
	}
	result.LedgerEntries = added

	service.logger.Info(
		markPairsCompletedLogMessageConstant,
		zap.Int(logFieldAnnotatedCountConstant, len(result.Pairs)),
		zap.Int(logFieldLedgerEntriesConstant, len(added)),
	)
	return result, nil
}

// pairByName matches each file of the first half with the first file of the second half
// sharing its base name.
func pairByName(files []string) ([][2]string, error) {
	middle := len(files) / 2
	oldFiles := files[:middle]
	newFiles := files[middle:]

	pairs := make([][2]string, 0, middle)
	for _, oldFile := range oldFiles {
		matched := false
		for _, newFile := range newFiles {
			if filepath.Base(oldFile) != filepath.Base(newFile) {
				continue
			}
			pairs = append(pairs, [2]string{oldFile, newFile})
			matched = true
			break
		}
		if !matched {
			return nil, fmt.Errorf(wrappedValueErrorTemplateConstant, ErrUnpairedFile, oldFile)
		}
	}
	return pairs, nil
}

func firstBlockLine(marked deprecation.MarkResult) int {
	if marked.Inserted == 0 {
		return 0
	}
	return marked.FirstLine + 1
}
