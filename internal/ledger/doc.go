// Package ledger persists render outcomes across runs so a batch can be
// resumed without resubmitting renders that already produced media.
//
// The ledger is a single JSON file holding every entry. Mutations rewrite
// the whole file through a temp-file rename, so readers never observe a
// partial write. An item counts as completed only once a media URL is
// recorded; pending and failed entries are retried on the next run.
package ledger
