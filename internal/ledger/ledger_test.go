package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coremigration/internal/filesystem"
	"github.com/temirov/coremigration/internal/ledger"
)

const (
	testOldPathA = "app/src/main/java/com/example/pack1/A.kt"
	testNewPathA = "lib/src/main/java/com/example/lib/pack1/A.kt"
	testOldPathB = "app/src/main/java/com/example/pack1/B.kt"
	testNewPathB = "lib/src/main/java/com/example/lib/pack1/B.kt"
)

func newTestLedger(t *testing.T) (*ledger.Ledger, string) {
	t.Helper()
	ledgerPath := filepath.Join(t.TempDir(), filepath.FromSlash(ledger.DefaultRelativePath))
	fileLedger, constructionError := ledger.New(filesystem.OSFileSystem{}, ledgerPath)
	require.NoError(t, constructionError)
	return fileLedger, ledgerPath
}

func readLedgerFile(t *testing.T, path string) string {
	t.Helper()
	content, readError := os.ReadFile(path)
	require.NoError(t, readError)
	return string(content)
}

func TestAppendCreatesFileAndSkipsDuplicates(t *testing.T) {
	fileLedger, ledgerPath := newTestLedger(t)

	added, appendError := fileLedger.Append([]ledger.Entry{
		{OldPath: testOldPathA, NewPath: testNewPathA},
		{OldPath: testOldPathA, NewPath: testNewPathA},
	})
	require.NoError(t, appendError)
	require.Equal(t, []ledger.Entry{{OldPath: testOldPathA, NewPath: testNewPathA}}, added)
	require.Equal(t, testOldPathA+","+testNewPathA+"\n", readLedgerFile(t, ledgerPath))

	addedAgain, secondAppendError := fileLedger.Append([]ledger.Entry{
		{OldPath: testOldPathA, NewPath: testNewPathA},
		{OldPath: testOldPathB, NewPath: testNewPathB},
	})
	require.NoError(t, secondAppendError)
	require.Equal(t, []ledger.Entry{{OldPath: testOldPathB, NewPath: testNewPathB}}, addedAgain)

	entries, entriesError := fileLedger.Entries()
	require.NoError(t, entriesError)
	require.Equal(t, []ledger.Entry{
		{OldPath: testOldPathA, NewPath: testNewPathA},
		{OldPath: testOldPathB, NewPath: testNewPathB},
	}, entries)
}

func TestAppendTerminatesExistingLastLine(t *testing.T) {
	fileLedger, ledgerPath := newTestLedger(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ledgerPath), 0o755))
	require.NoError(t, os.WriteFile(ledgerPath, []byte("x.kt,y.kt"), 0o644))

	_, appendError := fileLedger.Append([]ledger.Entry{{OldPath: testOldPathA, NewPath: testNewPathA}})
	require.NoError(t, appendError)
	require.Equal(t, "x.kt,y.kt\n"+testOldPathA+","+testNewPathA+"\n", readLedgerFile(t, ledgerPath))
}

func TestAppendQuotesSpecialCharacters(t *testing.T) {
	fileLedger, ledgerPath := newTestLedger(t)

	_, appendError := fileLedger.Append([]ledger.Entry{{OldPath: "app/src/a,b.kt", NewPath: "lib/src/a,b.kt"}})
	require.NoError(t, appendError)
	require.Equal(t, "\"app/src/a,b.kt\",\"lib/src/a,b.kt\"\n", readLedgerFile(t, ledgerPath))

	entries, entriesError := fileLedger.Entries()
	require.NoError(t, entriesError)
	require.Equal(t, []ledger.Entry{{OldPath: "app/src/a,b.kt", NewPath: "lib/src/a,b.kt"}}, entries)
}

func TestRemoveByOldPathsPreservesOtherLines(t *testing.T) {
	fileLedger, ledgerPath := newTestLedger(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ledgerPath), 0o755))
	initialContent := testOldPathA + "," + testNewPathA + "\n\n" + testOldPathB + "," + testNewPathB + "\n" + "not,a,pair\n"
	require.NoError(t, os.WriteFile(ledgerPath, []byte(initialContent), 0o644))

	removed, removeError := fileLedger.RemoveByOldPaths([]string{testOldPathA, "missing.kt"})
	require.NoError(t, removeError)
	require.Equal(t, []ledger.Entry{{OldPath: testOldPathA, NewPath: testNewPathA}}, removed)
	require.Equal(t, "\n"+testOldPathB+","+testNewPathB+"\n"+"not,a,pair\n", readLedgerFile(t, ledgerPath))
}

func TestRemoveByOldPathsRequiresLedger(t *testing.T) {
	fileLedger, _ := newTestLedger(t)

	removed, removeError := fileLedger.RemoveByOldPaths([]string{testOldPathA})
	require.ErrorIs(t, removeError, ledger.ErrLedgerNotFound)
	require.Nil(t, removed)
}

func TestEntriesRejectsMalformedRows(t *testing.T) {
	fileLedger, ledgerPath := newTestLedger(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ledgerPath), 0o755))
	require.NoError(t, os.WriteFile(ledgerPath, []byte("a.kt,b.kt\nsingle\n"), 0o644))

	_, entriesError := fileLedger.Entries()
	require.ErrorContains(t, entriesError, "line 2 has 1 columns")
}

func TestEntriesOfMissingLedger(t *testing.T) {
	fileLedger, _ := newTestLedger(t)

	exists, existsError := fileLedger.Exists()
	require.NoError(t, existsError)
	require.False(t, exists)

	entries, entriesError := fileLedger.Entries()
	require.NoError(t, entriesError)
	require.Empty(t, entries)
}

func TestNewValidatesInputs(t *testing.T) {
	_, missingFileSystemError := ledger.New(nil, "ledger.csv")
	require.ErrorIs(t, missingFileSystemError, ledger.ErrFileSystemNotConfigured)

	_, missingPathError := ledger.New(filesystem.OSFileSystem{}, "  ")
	require.ErrorIs(t, missingPathError, ledger.ErrLedgerPathRequired)
}
