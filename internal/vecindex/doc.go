// Package vecindex builds, persists, loads, and queries the
// nearest-neighbor structure over chunk embeddings.
//
// The index is a flat exact k-NN structure: search computes the L2
// distance from the query vector to every stored vector and returns the
// k closest chunks in ascending distance order, ties broken by
// insertion order.
//
// # Persistence
//
// An index is persisted at a named location as two co-located
// artifacts:
//
//   - vectors.bin: a binary blob of little-endian float32 vectors
//     behind a magic/dimension/count header
//   - meta.db: a SQLite table of chunk text, source path, and span,
//     rowid-aligned with the blob's vector order
//
// Both artifacts are required for a valid load. A missing artifact is
// types.ErrIndexNotFound; a count or dimension mismatch between the two
// is types.ErrIndexCorrupt. Saves write to a temporary location and
// swap, so a failed build never clobbers a working index.
//
// The SQLite driver is selected at build time: modernc.org/sqlite by
// default, github.com/mattn/go-sqlite3 under the cgo_sqlite tag.
//
// # Concurrency
//
// Manager publishes the in-memory handle with an atomic pointer swap.
// Readers are lock-free once a handle is published; a rebuild swaps in
// a complete new handle and in-flight searches finish against the one
// they started with.
package vecindex
