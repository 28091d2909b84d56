package session

import "errors"

// Common errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnOutOfRange  = errors.New("turn index out of range")
	ErrTurnNotPending  = errors.New("turn is not pending")
)

// TurnState tracks the lifecycle of a question/answer pair.
type TurnState int

const (
	// TurnPending means the question is asked but not yet answered.
	TurnPending TurnState = iota
	// TurnAnswered means the answer has been filled in.
	TurnAnswered
	// TurnFailed means answering the question failed; the turn carries
	// an error marker and is excluded from rendered history.
	TurnFailed
)

// Turn is one question/answer pair within a session. Turns are appended
// only; never reordered or deleted within the process lifetime.
type Turn struct {
	Question string
	Answer   string
	State    TurnState
}

// Store is the session store abstraction injected into the query
// orchestrator. Implementations must serialize operations within one
// session while letting different sessions proceed concurrently.
type Store interface {
	// GetOrCreate resolves an existing session or creates a new one,
	// generating a fresh unique identifier when id is empty.
	GetOrCreate(id string) (string, error)

	// AppendQuestion appends a pending turn and returns its index.
	AppendQuestion(sessionID, question string) (int, error)

	// SetAnswer completes the pending turn at the given index.
	SetAnswer(sessionID string, turn int, answer string) error

	// FailTurn marks the pending turn at the given index as failed with
	// an error marker, so it never blocks future history rendering.
	FailTurn(sessionID string, turn int, marker string) error

	// History renders all completed prior turns in chronological order
	// as alternating labeled lines. Pending and failed turns are
	// skipped; no completed turns yields the empty string.
	History(sessionID string) (string, error)

	// Len reports the number of live sessions.
	Len() int

	// Reset destroys all sessions.
	Reset()
}
