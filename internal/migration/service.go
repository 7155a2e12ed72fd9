package migration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/coremigration/internal/filesystem"
	"github.com/temirov/coremigration/internal/gitscript"
	"github.com/temirov/coremigration/internal/ledger"
	"github.com/temirov/coremigration/internal/pathmap"
	"github.com/temirov/coremigration/internal/prompt"
	"github.com/temirov/coremigration/internal/traversal"
)

const (
	fileSystemMissingMessageConstant          = "file system not configured"
	gitExecutorMissingMessageConstant         = "git executor not configured"
	repositoryInspectorMissingMessageConstant = "repository inspector not configured"
	invalidSelectionMessageConstant           = "invalid selection"
	unpairedFileMessageConstant               = "selected file has no counterpart with the same name"
	dirtyWorktreeMessageConstant              = "repository worktree must be clean before duplication"
	outsideProjectMessageConstant             = "path is outside the project root"
	stagedChangesMessageConstant              = "index must not contain staged changes before duplication"
	invalidInputErrorTemplateConstant         = "%s: %s"
	directorySelectedMessageTemplateConstant  = "directories are not supported: %s"
	wrappedValueErrorTemplateConstant         = "%w: %s"
	resolveProjectRootErrorTemplateConstant   = "unable to resolve project root: %w"
	resolvePathErrorTemplateConstant          = "unable to resolve %s: %w"
	inspectPathErrorTemplateConstant          = "unable to inspect %s: %w"
	readFileErrorTemplateConstant             = "unable to read %s: %w"
	writeFileErrorTemplateConstant            = "unable to write %s: %w"
	openLedgerErrorTemplateConstant           = "unable to open ledger: %w"
	updateLedgerErrorTemplateConstant         = "unable to update ledger: %w"
	workingDirectoryPathConstant              = "."
	projectRootFallbackLogMessageConstant     = "Project root not detected through git, using working directory"
	logFieldProjectRootConstant               = "project_root"
	logFieldRunIdentifierConstant             = "run_id"
	logFieldPathConstant                      = "path"
	logFieldPathsConstant                     = "paths"
	sourceFilePermissionsFallbackConstant     = 0o644
)

var (
	// ErrFileSystemNotConfigured indicates that the service was built without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
	// ErrGitExecutorNotConfigured indicates that the service was built without a git executor.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)
	// ErrRepositoryInspectorNotConfigured indicates that the service was built without a repository inspector.
	ErrRepositoryInspectorNotConfigured = errors.New(repositoryInspectorMissingMessageConstant)
	// ErrInvalidSelection indicates a selection that the workflow cannot accept.
	ErrInvalidSelection = errors.New(invalidSelectionMessageConstant)
	// ErrUnpairedFile indicates that an old file has no new counterpart in a pair selection.
	ErrUnpairedFile = errors.New(unpairedFileMessageConstant)
	// ErrDirtyWorktree indicates uncommitted changes when a clean worktree is required.
	ErrDirtyWorktree = errors.New(dirtyWorktreeMessageConstant)
	// ErrStagedChanges indicates that the index already holds changes that duplication would commit or merge over.
	ErrStagedChanges = errors.New(stagedChangesMessageConstant)
	// ErrOutsideProject indicates a selection that does not live under the project root.
	ErrOutsideProject = errors.New(outsideProjectMessageConstant)
)

// InvalidInputError describes option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// Unwrap classifies every input error as an invalid selection.
func (inputError InvalidInputError) Unwrap() error {
	return ErrInvalidSelection
}

// RepositoryInspector answers repository state questions.
type RepositoryInspector interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	ListStagedPaths(executionContext context.Context, repositoryPath string) ([]string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetTopLevel(executionContext context.Context, repositoryPath string) (string, error)
}

// RunIdentifierProvider produces an identifier attached to every duplication run.
type RunIdentifierProvider func() string

// ServiceDependencies describes required collaborators for the migration workflows.
type ServiceDependencies struct {
	Logger                *zap.Logger
	FileSystem            filesystem.FileSystem
	GitExecutor           gitscript.GitExecutor
	RepositoryInspector   RepositoryInspector
	Prompter              prompt.ConfirmationPrompter
	Configuration         Configuration
	RunIdentifierProvider RunIdentifierProvider
}

// Service orchestrates the migration workflows.
type Service struct {
	logger                *zap.Logger
	fileSystem            filesystem.FileSystem
	repositoryInspector   RepositoryInspector
	prompter              prompt.ConfirmationPrompter
	configuration         Configuration
	mapper                *pathmap.Mapper
	traverser             *traversal.Traverser
	runner                *gitscript.Runner
	runIdentifierProvider RunIdentifierProvider
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.RepositoryInspector == nil {
		return nil, ErrRepositoryInspectorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	configuration := dependencies.Configuration.Sanitize()

	traverser, traverserError := traversal.NewTraverser(dependencies.FileSystem, configuration.ExcludePatterns)
	if traverserError != nil {
		return nil, traverserError
	}

	runner, runnerError := gitscript.NewRunner(dependencies.GitExecutor, logger)
	if runnerError != nil {
		return nil, runnerError
	}

	runIdentifierProvider := dependencies.RunIdentifierProvider
	if runIdentifierProvider == nil {
		runIdentifierProvider = uuid.NewString
	}

	return &Service{
		logger:                logger,
		fileSystem:            dependencies.FileSystem,
		repositoryInspector:   dependencies.RepositoryInspector,
		prompter:              dependencies.Prompter,
		configuration:         configuration,
		mapper:                pathmap.NewMapper(configuration.PathConfiguration()),
		traverser:             traverser,
		runner:                runner,
		runIdentifierProvider: runIdentifierProvider,
	}, nil
}

// resolveProjectRoot returns the configured project root or the enclosing repository root.
// When git cannot locate a repository the working directory is used.
func (service *Service) resolveProjectRoot(executionContext context.Context) (string, error) {
	if len(service.configuration.ProjectRoot) > 0 {
		absoluteRoot, absoluteError := service.fileSystem.Abs(service.configuration.ProjectRoot)
		if absoluteError != nil {
			return "", fmt.Errorf(resolveProjectRootErrorTemplateConstant, absoluteError)
		}
		return absoluteRoot, nil
	}

	workingDirectory, workingDirectoryError := service.fileSystem.Abs(workingDirectoryPathConstant)
	if workingDirectoryError != nil {
		return "", fmt.Errorf(resolveProjectRootErrorTemplateConstant, workingDirectoryError)
	}

	topLevel, topLevelError := service.repositoryInspector.GetTopLevel(executionContext, workingDirectory)
	if topLevelError != nil {
		if errors.Is(topLevelError, context.Canceled) || errors.Is(topLevelError, context.DeadlineExceeded) {
			return "", topLevelError
		}
		service.logger.Debug(projectRootFallbackLogMessageConstant, zap.String(logFieldProjectRootConstant, workingDirectory), zap.Error(topLevelError))
		return workingDirectory, nil
	}
	return filepath.Clean(topLevel), nil
}

func (service *Service) openLedger(projectRoot string) (*ledger.Ledger, error) {
	ledgerPath := service.configuration.LedgerPath
	if !filepath.IsAbs(ledgerPath) {
		ledgerPath = filepath.Join(projectRoot, filepath.FromSlash(ledgerPath))
	}
	fileLedger, ledgerError := ledger.New(service.fileSystem, ledgerPath)
	if ledgerError != nil {
		return nil, fmt.Errorf(openLedgerErrorTemplateConstant, ledgerError)
	}
	return fileLedger, nil
}

// ledgerPath renders a path the way it is recorded in the ledger and deprecation notices:
// from the module directory preceding the source root, or relative to the project root
// when the path has no source root. Directories above the project root never contribute.
func (service *Service) ledgerPath(projectRoot string, absolutePath string) string {
	projectPath := projectRelativePath(projectRoot, absolutePath)
	if relativePath := service.mapper.ProjectRelativePath(projectPath); len(relativePath) > 0 {
		return relativePath
	}
	return projectPath
}

// projectRelativePath renders absolutePath relative to the project root with slash
// separators, or the whole slash path when it lies outside the project.
func projectRelativePath(projectRoot string, absolutePath string) string {
	relativePath, relativeError := repositoryPath(projectRoot, absolutePath)
	if relativeError != nil {
		return filepath.ToSlash(absolutePath)
	}
	return relativePath
}

// repositoryPath renders an absolute path relative to the project root for git arguments.
func repositoryPath(projectRoot string, absolutePath string) (string, error) {
	relativePath, relativeError := filepath.Rel(projectRoot, absolutePath)
	if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf(wrappedValueErrorTemplateConstant, ErrOutsideProject, absolutePath)
	}
	return filepath.ToSlash(relativePath), nil
}

// resolveFiles converts a selection of regular files into absolute paths, rejecting
// directories and missing files.
func (service *Service) resolveFiles(fieldName string, selections []string) ([]string, error) {
	if len(selections) == 0 {
		return nil, InvalidInputError{FieldName: fieldName, Message: traversal.ErrEmptySelection.Error()}
	}

	resolved := make([]string, 0, len(selections))
	for _, selection := range selections {
		absolutePath, absoluteError := service.fileSystem.Abs(selection)
		if absoluteError != nil {
			return nil, fmt.Errorf(resolvePathErrorTemplateConstant, selection, absoluteError)
		}
		info, statError := service.fileSystem.Stat(absolutePath)
		if statError != nil {
			return nil, fmt.Errorf(inspectPathErrorTemplateConstant, absolutePath, statError)
		}
		if info.IsDir() {
			return nil, InvalidInputError{FieldName: fieldName, Message: fmt.Sprintf(directorySelectedMessageTemplateConstant, absolutePath)}
		}
		resolved = append(resolved, absolutePath)
	}
	return resolved, nil
}

func (service *Service) readFile(path string) (string, error) {
	content, readError := service.fileSystem.ReadFile(path)
	if readError != nil {
		return "", fmt.Errorf(readFileErrorTemplateConstant, path, readError)
	}
	return string(content), nil
}

func (service *Service) writeFile(path string, content string) error {
	permissions := filesystem.FileMode(service.fileSystem, path, sourceFilePermissionsFallbackConstant)
	if writeError := service.fileSystem.WriteFile(path, []byte(content), permissions); writeError != nil {
		return fmt.Errorf(writeFileErrorTemplateConstant, path, writeError)
	}
	return nil
}
