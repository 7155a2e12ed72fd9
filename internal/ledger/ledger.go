package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/coremigration/internal/filesystem"
)

const (
	// DefaultRelativePath is the ledger location relative to the project root.
	DefaultRelativePath = "app/src/test/resources/refactor/file_comparison_paths.csv"

	ledgerNotFoundMessageConstant              = "ledger file not found"
	fileSystemNotConfiguredMessageConstant     = "ledger file system not configured"
	ledgerPathRequiredMessageConstant          = "ledger path must be provided"
	readLedgerErrorTemplateConstant            = "unable to read ledger %s: %w"
	writeLedgerErrorTemplateConstant           = "unable to write ledger %s: %w"
	createLedgerDirectoryErrorTemplateConstant = "unable to create ledger directory %s: %w"
	parseLedgerErrorTemplateConstant           = "unable to parse ledger %s: %w"
	encodeEntryErrorTemplateConstant           = "unable to encode ledger entry %s: %w"
	malformedRowErrorTemplateConstant          = "ledger %s line %d has %d columns, expected 2"
	ledgerNotFoundErrorTemplateConstant        = "%w: %s"
	lineFeedConstant                           = "\n"
	carriageReturnConstant                     = "\r"
	ledgerFilePermissionsConstant              = fs.FileMode(0o644)
	ledgerDirectoryPermissionsConstant         = fs.FileMode(0o755)
	ledgerColumnCountConstant                  = 2
	oldPathColumnIndexConstant                 = 0
	newPathColumnIndexConstant                 = 1
)

var (
	// ErrLedgerNotFound indicates that the ledger file does not exist.
	ErrLedgerNotFound = errors.New(ledgerNotFoundMessageConstant)
	// ErrFileSystemNotConfigured indicates that the ledger was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrLedgerPathRequired indicates an empty ledger location.
	ErrLedgerPathRequired = errors.New(ledgerPathRequiredMessageConstant)
)

// Entry is a single ledger row.
type Entry struct {
	OldPath string
	NewPath string
}

// Ledger reads and updates one CSV file.
type Ledger struct {
	fileSystem filesystem.FileSystem
	path       string
}

// New constructs a Ledger stored at path.
func New(fileSystem filesystem.FileSystem, path string) (*Ledger, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, ErrLedgerPathRequired
	}
	return &Ledger{fileSystem: fileSystem, path: trimmedPath}, nil
}

// Path returns the ledger file location.
func (ledger *Ledger) Path() string {
	return ledger.path
}

// Exists reports whether the ledger file is present.
func (ledger *Ledger) Exists() (bool, error) {
	_, exists, readError := ledger.read()
	return exists, readError
}

// Append adds entries whose encoded rows are not yet present and returns the rows written.
func (ledger *Ledger) Append(entries []Entry) ([]Entry, error) {
	content, exists, readError := ledger.read()
	if readError != nil {
		return nil, readError
	}

	existingLines := make(map[string]struct{})
	for _, line := range strings.Split(content, lineFeedConstant) {
		existingLines[strings.TrimSuffix(line, carriageReturnConstant)] = struct{}{}
	}

	var builder strings.Builder
	builder.WriteString(content)
	if len(content) > 0 && !strings.HasSuffix(content, lineFeedConstant) {
		builder.WriteString(lineFeedConstant)
	}

	added := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		encodedLine, encodeError := encodeEntry(entry)
		if encodeError != nil {
			return nil, fmt.Errorf(encodeEntryErrorTemplateConstant, entry.OldPath, encodeError)
		}
		if _, present := existingLines[encodedLine]; present {
			continue
		}
		existingLines[encodedLine] = struct{}{}
		builder.WriteString(encodedLine)
		builder.WriteString(lineFeedConstant)
		added = append(added, entry)
	}

	if len(added) == 0 {
		return added, nil
	}

	if !exists {
		ledgerDirectory := filepath.Dir(ledger.path)
		if mkdirError := ledger.fileSystem.MkdirAll(ledgerDirectory, ledgerDirectoryPermissionsConstant); mkdirError != nil {
			return nil, fmt.Errorf(createLedgerDirectoryErrorTemplateConstant, ledgerDirectory, mkdirError)
		}
	}
	if writeError := ledger.write(builder.String()); writeError != nil {
		return nil, writeError
	}
	return added, nil
}

// RemoveByOldPaths drops every row whose first column matches one of oldPaths. All other
// lines are kept verbatim. The removed rows are returned.
func (ledger *Ledger) RemoveByOldPaths(oldPaths []string) ([]Entry, error) {
	content, exists, readError := ledger.read()
	if readError != nil {
		return nil, readError
	}
	if !exists {
		return nil, fmt.Errorf(ledgerNotFoundErrorTemplateConstant, ErrLedgerNotFound, ledger.path)
	}

	targets := make(map[string]struct{}, len(oldPaths))
	for _, oldPath := range oldPaths {
		targets[oldPath] = struct{}{}
	}

	var builder strings.Builder
	removed := make([]Entry, 0, len(oldPaths))
	for _, rawLine := range strings.SplitAfter(content, lineFeedConstant) {
		record, parsed := parseLine(rawLine)
		if parsed {
			if _, matched := targets[record[oldPathColumnIndexConstant]]; matched {
				removed = append(removed, entryFromRecord(record))
				continue
			}
		}
		builder.WriteString(rawLine)
	}

	if len(removed) == 0 {
		return removed, nil
	}
	if writeError := ledger.write(builder.String()); writeError != nil {
		return nil, writeError
	}
	return removed, nil
}

// Entries parses every non-blank row. A missing ledger has no entries.
func (ledger *Ledger) Entries() ([]Entry, error) {
	content, _, readError := ledger.read()
	if readError != nil {
		return nil, readError
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	entries := make([]Entry, 0)
	for {
		record, recordError := reader.Read()
		if errors.Is(recordError, io.EOF) {
			return entries, nil
		}
		if recordError != nil {
			return nil, fmt.Errorf(parseLedgerErrorTemplateConstant, ledger.path, recordError)
		}
		if len(record) != ledgerColumnCountConstant {
			line, _ := reader.FieldPos(oldPathColumnIndexConstant)
			return nil, fmt.Errorf(malformedRowErrorTemplateConstant, ledger.path, line, len(record))
		}
		entries = append(entries, entryFromRecord(record))
	}
}

func (ledger *Ledger) read() (string, bool, error) {
	content, readError := ledger.fileSystem.ReadFile(ledger.path)
	if errors.Is(readError, fs.ErrNotExist) {
		return "", false, nil
	}
	if readError != nil {
		return "", false, fmt.Errorf(readLedgerErrorTemplateConstant, ledger.path, readError)
	}
	return string(content), true, nil
}

func (ledger *Ledger) write(content string) error {
	permissions := filesystem.FileMode(ledger.fileSystem, ledger.path, ledgerFilePermissionsConstant)
	if writeError := ledger.fileSystem.WriteFile(ledger.path, []byte(content), permissions); writeError != nil {
		return fmt.Errorf(writeLedgerErrorTemplateConstant, ledger.path, writeError)
	}
	return nil
}

func encodeEntry(entry Entry) (string, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if writeError := writer.Write([]string{entry.OldPath, entry.NewPath}); writeError != nil {
		return "", writeError
	}
	writer.Flush()
	if flushError := writer.Error(); flushError != nil {
		return "", flushError
	}
	return strings.TrimSuffix(buffer.String(), lineFeedConstant), nil
}

func parseLine(rawLine string) ([]string, bool) {
	if len(strings.TrimSpace(rawLine)) == 0 {
		return nil, false
	}
	record, parseError := csv.NewReader(strings.NewReader(rawLine)).Read()
	if parseError != nil || len(record) != ledgerColumnCountConstant {
		return nil, false
	}
	return record, true
}

func entryFromRecord(record []string) Entry {
	return Entry{OldPath: record[oldPathColumnIndexConstant], NewPath: record[newPathColumnIndexConstant]}
}
