// Package session keeps per-conversation question/answer history.
//
// A session is an opaque identifier owning an append-only sequence of
// turns. The Store interface is injected into the query orchestrator so
// the in-memory implementation can later be swapped for a persistent or
// TTL-evicting backend without touching orchestration logic.
//
// History rendering only ever includes completed turns: a turn that is
// still pending, or that failed, is skipped, so an aborted question can
// never poison later prompts.
//
// Different sessions never block each other; operations within one
// session are serialized by a per-session mutex.
package session
