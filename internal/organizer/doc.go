// Package organizer runs the classify, name, and file pipeline over batches
// of inbox documents.
//
// Batches are strictly sequential: the same category and .backup folders are
// shared by every file, and the collision check in the filer is only
// race-free when one move happens at a time. An advisory lock file extends
// that guarantee across processes so the watch daemon and a manual organize
// run never interleave. A failure on one file never stops the batch; every
// input gets a result, in input order. Cancellation is checked between files.
//
// After a batch the organizer marks filed sources in the tracker and appends
// a summary row to the processing history.
package organizer
