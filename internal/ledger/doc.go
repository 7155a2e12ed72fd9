// Package ledger maintains the CSV file that maps deprecated source files to the copies
// that replace them.
package ledger
