// Package mcp exposes the code navigator over the Model Context
// Protocol. It is a thin framing layer: every tool delegates to the
// ingest, indexer, or query packages, and the core contract of the
// system stays (question, optional session id) -> (answer, session id).
//
// # Tools
//
//   - load_repository: git-clone a repository into the corpus,
//     replacing prior state and invalidating the index
//   - load_archive: extract an uploaded zip archive the same way
//   - index_repository: scan, chunk, embed, and persist the index
//   - ask_question: answer a question against the index; accepts an
//     optional session_id for conversational follow-ups
//   - get_status: report load/index state and index statistics
//   - reset: delete the corpus, the index, and all sessions
//
// # Errors
//
// Handlers return MCPError values with JSON-RPC style codes. Domain
// conditions map to dedicated codes so clients can react without
// parsing messages: asking before indexing yields ErrorCodeNotIndexed
// with a hint to run index_repository, and a concurrent build yields
// ErrorCodeBuilderBusy.
//
// The server speaks stdio; all logging goes to stderr so stdout stays
// a clean protocol channel.
package mcp
