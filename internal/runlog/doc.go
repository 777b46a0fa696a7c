// Package runlog records render attempt history in SQLite. The ledger only
// keeps the latest state per item; the run log keeps every attempt with its
// timing and failure detail, which is what the status command reports.
package runlog
