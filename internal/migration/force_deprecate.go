package migration

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/deprecation"
)

const forceDeprecateCompletedLogMessageConstant = "Escalated deprecations"

// ForceDeprecateOptions configures the force-deprecate workflow.
type ForceDeprecateOptions struct {
	Files []string
}

// ForceDeprecateResult lists escalated files and files without a deprecation block.
type ForceDeprecateResult struct {
	Escalated []string
	Unchanged []string
}

// ForceDeprecate escalates the generated deprecation blocks of the selected files from
// warnings to errors. Failures on individual files do not stop the remaining files.
func (service *Service) ForceDeprecate(_ context.Context, options ForceDeprecateOptions) (ForceDeprecateResult, error) {
	files, resolveError := service.resolveFiles(filesFieldNameConstant, options.Files)
	if resolveError != nil {
		return ForceDeprecateResult{}, resolveError
	}

	result := ForceDeprecateResult{}
	var fileErrors []error
	for _, file := range files {
		content, readError := service.readFile(file)
		if readError != nil {
			fileErrors = append(fileErrors, readError)
			continue
		}
		escalated, changed := deprecation.Escalate(content)
		if !changed {
			result.Unchanged = append(result.Unchanged, file)
			continue
		}
		if writeError := service.writeFile(file, escalated); writeError != nil {
			fileErrors = append(fileErrors, writeError)
			continue
		}
		result.Escalated = append(result.Escalated, file)
	}

	service.logger.Info(
		forceDeprecateCompletedLogMessageConstant,
		zap.Strings(logFieldPathsConstant, result.Escalated),
		zap.Int(logFieldAnnotatedCountConstant, len(result.Escalated)),
	)
	return result, errors.Join(fileErrors...)
}
