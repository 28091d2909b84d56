package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxSessions caps the number of live sessions before the
	// least recently used is evicted.
	DefaultMaxSessions = 1000

	// DefaultIdleTTL is how long a session may sit untouched before it
	// becomes eligible for eviction.
	DefaultIdleTTL = 24 * time.Hour
)

// Config bounds the in-memory store. Zero values select the defaults;
// a negative IdleTTL disables idle eviction.
type Config struct {
	MaxSessions int
	IdleTTL     time.Duration
}

type memorySession struct {
	mu    sync.Mutex
	turns []Turn

	// lastActive is unix nanoseconds. Atomic because turn operations
	// update it under only the per-session mutex while the store-level
	// eviction scan reads it under only the store mutex.
	lastActive atomic.Int64
}

func (m *memorySession) touch(t time.Time) {
	m.lastActive.Store(t.UnixNano())
}

// awaitingAnswer reports whether the newest turn is still pending.
func (m *memorySession) awaitingAnswer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns) > 0 && m.turns[len(m.turns)-1].State == TurnPending
}

// MemoryStore is the in-process Store implementation. Sessions live for
// the process lifetime unless evicted by the capacity or idle policy.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession

	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given bounds.
func NewMemoryStore(cfg Config) *MemoryStore {
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	idleTTL := cfg.IdleTTL
	if idleTTL == 0 {
		idleTTL = DefaultIdleTTL
	}

	return &MemoryStore{
		sessions:    make(map[string]*memorySession),
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

// GetOrCreate resolves or creates a session. Unknown non-empty ids are
// created as-is so a caller holding an identifier from a previous
// process keeps a working, if empty, session.
func (s *MemoryStore) GetOrCreate(id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.touch(s.now())
		return id, nil
	}

	s.evictLocked()
	sess := &memorySession{}
	sess.touch(s.now())
	s.sessions[id] = sess
	return id, nil
}

// evictLocked drops idle sessions past the TTL, then the least recently
// used session if the store is still at capacity. Caller holds s.mu.
func (s *MemoryStore) evictLocked() {
	now := s.now()

	if s.idleTTL > 0 {
		cutoff := now.Add(-s.idleTTL).UnixNano()
		for id, sess := range s.sessions {
			if sess.lastActive.Load() < cutoff {
				delete(s.sessions, id)
			}
		}
	}

	for len(s.sessions) >= s.maxSessions {
		victim := s.lruVictimLocked(true)
		if victim == "" {
			// Every session has a question in flight; evict the oldest
			// anyway rather than grow without bound.
			victim = s.lruVictimLocked(false)
		}
		if victim == "" {
			return
		}
		delete(s.sessions, victim)
	}
}

// lruVictimLocked picks the least recently used session. With
// skipPending set, sessions whose newest turn is still awaiting an
// answer are passed over so an in-flight question cannot lose its
// session between being asked and being answered. Caller holds s.mu.
func (s *MemoryStore) lruVictimLocked(skipPending bool) string {
	var victimID string
	var oldest int64
	for id, sess := range s.sessions {
		if skipPending && sess.awaitingAnswer() {
			continue
		}
		if at := sess.lastActive.Load(); victimID == "" || at < oldest {
			victimID = id
			oldest = at
		}
	}
	return victimID
}

func (s *MemoryStore) get(sessionID string) (*memorySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// AppendQuestion appends a pending turn and returns its index.
func (s *MemoryStore) AppendQuestion(sessionID, question string) (int, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, Turn{Question: question, State: TurnPending})
	sess.touch(s.now())
	return len(sess.turns) - 1, nil
}

// SetAnswer completes the pending turn at the given index.
func (s *MemoryStore) SetAnswer(sessionID string, turn int, answer string) error {
	return s.resolve(sessionID, turn, answer, TurnAnswered)
}

// FailTurn marks the pending turn at the given index as failed.
func (s *MemoryStore) FailTurn(sessionID string, turn int, marker string) error {
	return s.resolve(sessionID, turn, marker, TurnFailed)
}

func (s *MemoryStore) resolve(sessionID string, turn int, answer string, state TurnState) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if turn < 0 || turn >= len(sess.turns) {
		return fmt.Errorf("%w: %d", ErrTurnOutOfRange, turn)
	}
	if sess.turns[turn].State != TurnPending {
		return fmt.Errorf("%w: turn %d", ErrTurnNotPending, turn)
	}

	sess.turns[turn].Answer = answer
	sess.turns[turn].State = state
	sess.touch(s.now())
	return nil
}

// History renders completed turns as alternating "User:"/"Assistant:"
// lines in chronological order.
func (s *MemoryStore) History(sessionID string) (string, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var b strings.Builder
	for _, turn := range sess.turns {
		if turn.State != TurnAnswered {
			continue
		}
		fmt.Fprintf(&b, "User: %s\n", turn.Question)
		fmt.Fprintf(&b, "Assistant: %s\n", turn.Answer)
	}

	return b.String(), nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reset destroys all sessions.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*memorySession)
}
