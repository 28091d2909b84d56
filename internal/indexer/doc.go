// Package indexer coordinates the index build pipeline.
//
// A build scans the corpus, slices every eligible file into
// fixed-window chunks, embeds the chunks in concurrent batches, and
// atomically replaces the vector index in memory and on disk.
//
// # Pipeline
//
//	scan -> chunk -> embed (errgroup + semaphore) -> rebuild
//
// Embedding batches run concurrently up to the configured worker
// count; each batch writes into an index-aligned slice so chunk order
// survives regardless of batch completion order.
//
// # Build exclusivity
//
// At most one build runs per Indexer. A second request while a build
// is in flight fails immediately with ErrBuildInProgress instead of
// queueing, so callers can report "already indexing" to the user. A
// failed build leaves the previous index fully intact.
package indexer
