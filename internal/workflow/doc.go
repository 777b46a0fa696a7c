// Package workflow drives a batch of dubbings through the render pipeline.
//
// A run loads the batch list, applies offset/limit windowing, and processes
// items strictly in order, one at a time. For each item the runner checks
// the ledger, fetches the dubbing to classify its title markers, submits a
// render built from the latest editor snapshot, polls the job to completion,
// and marks the title exported. A file lock guards against concurrent runs.
// Failures are contained to the item that raised them.
package workflow
