// Package types provides shared type definitions for the code navigator.
//
// This package defines the domain types used across multiple components:
// source files, chunks, search results, and the sentinel errors that cross
// component boundaries.
//
// # Core Types
//
// SourceFile is a scanned corpus file with its raw content:
//
//	file := types.SourceFile{
//	    Path:    "backend/auth.py",
//	    Content: rawText,
//	}
//
// Chunk is a fixed character window over a file's text, the unit of
// embedding and retrieval:
//
//	chunk := types.Chunk{
//	    Source: "backend/auth.py",
//	    Start:  700,
//	    End:    1500,
//	    Text:   text[700:1500],
//	}
//
// SearchResult pairs a retrieved chunk with its distance to the query
// vector; results are ordered by ascending distance.
//
// # Errors
//
// Index-level failures are reported through the sentinel errors
// ErrIndexNotFound and ErrIndexCorrupt, wrapped with context by the
// components that raise them:
//
//	if errors.Is(err, types.ErrIndexNotFound) {
//	    // ask the caller to index the repository first
//	}
package types
