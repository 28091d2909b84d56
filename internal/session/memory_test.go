package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_GeneratesFreshID(t *testing.T) {
	s := NewMemoryStore(Config{})

	id1, err := s.GetOrCreate("")
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	id2, err := s.GetOrCreate("")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2, "fresh sessions get unique identifiers")

	assert.Equal(t, 2, s.Len())
}

func TestGetOrCreate_ReusesExisting(t *testing.T) {
	s := NewMemoryStore(Config{})

	id, err := s.GetOrCreate("")
	require.NoError(t, err)

	same, err := s.GetOrCreate(id)
	require.NoError(t, err)
	assert.Equal(t, id, same)
	assert.Equal(t, 1, s.Len())
}

func TestAppendAndAnswer(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")

	turn, err := s.AppendQuestion(id, "what does auth.py do?")
	require.NoError(t, err)
	assert.Equal(t, 0, turn)

	require.NoError(t, s.SetAnswer(id, turn, "it handles logins"))

	history, err := s.History(id)
	require.NoError(t, err)
	assert.Equal(t, "User: what does auth.py do?\nAssistant: it handles logins\n", history)
}

func TestHistory_SkipsPendingTurns(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")

	first, _ := s.AppendQuestion(id, "first question")
	require.NoError(t, s.SetAnswer(id, first, "first answer"))

	// Second question is still pending
	_, err := s.AppendQuestion(id, "second question")
	require.NoError(t, err)

	history, err := s.History(id)
	require.NoError(t, err)
	assert.Contains(t, history, "first question")
	assert.Contains(t, history, "first answer")
	assert.NotContains(t, history, "second question")
}

func TestHistory_SkipsFailedTurns(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")

	turn, _ := s.AppendQuestion(id, "doomed question")
	require.NoError(t, s.FailTurn(id, turn, "generation failed"))

	history, err := s.History(id)
	require.NoError(t, err)
	assert.Empty(t, history)

	// A failed turn must not block later turns
	next, err := s.AppendQuestion(id, "follow-up")
	require.NoError(t, err)
	require.NoError(t, s.SetAnswer(id, next, "works fine"))

	history, _ = s.History(id)
	assert.Contains(t, history, "follow-up")
	assert.NotContains(t, history, "doomed question")
}

func TestHistory_ChronologicalOrder(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")

	for i := 0; i < 3; i++ {
		turn, _ := s.AppendQuestion(id, fmt.Sprintf("q%d", i))
		require.NoError(t, s.SetAnswer(id, turn, fmt.Sprintf("a%d", i)))
	}

	history, _ := s.History(id)
	assert.Equal(t, "User: q0\nAssistant: a0\nUser: q1\nAssistant: a1\nUser: q2\nAssistant: a2\n", history)
}

func TestHistory_EmptySession(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")

	history, err := s.History(id)
	require.NoError(t, err)
	assert.Equal(t, "", history)
}

func TestUnknownSession(t *testing.T) {
	s := NewMemoryStore(Config{})

	_, err := s.AppendQuestion("nope", "q")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = s.SetAnswer("nope", 0, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.History("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSetAnswer_Validation(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")
	turn, _ := s.AppendQuestion(id, "q")

	assert.ErrorIs(t, s.SetAnswer(id, 5, "a"), ErrTurnOutOfRange)
	assert.ErrorIs(t, s.SetAnswer(id, -1, "a"), ErrTurnOutOfRange)

	require.NoError(t, s.SetAnswer(id, turn, "a"))
	assert.ErrorIs(t, s.SetAnswer(id, turn, "again"), ErrTurnNotPending)
}

func TestEviction_MaxSessions(t *testing.T) {
	s := NewMemoryStore(Config{MaxSessions: 3, IdleTTL: -1})

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		id, err := s.GetOrCreate("")
		require.NoError(t, err)
		ids = append(ids, id)
		// Distinct lastActive timestamps for deterministic LRU order
		time.Sleep(time.Millisecond)
	}

	assert.Equal(t, 3, s.Len())

	// The oldest session was evicted
	_, err := s.History(ids[0])
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.History(ids[3])
	assert.NoError(t, err)
}

func TestEviction_IdleTTL(t *testing.T) {
	s := NewMemoryStore(Config{IdleTTL: time.Minute})

	clock := time.Now()
	s.now = func() time.Time { return clock }

	stale, _ := s.GetOrCreate("")

	clock = clock.Add(2 * time.Minute)
	fresh, _ := s.GetOrCreate("")

	assert.Equal(t, 1, s.Len())
	_, err := s.History(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.History(fresh)
	assert.NoError(t, err)
}

func TestEviction_SparesSessionWithInFlightTurn(t *testing.T) {
	s := NewMemoryStore(Config{MaxSessions: 2, IdleTTL: -1})

	clock := time.Now()
	s.now = func() time.Time { return clock }

	busy, _ := s.GetOrCreate("")
	turn, err := s.AppendQuestion(busy, "long question")
	require.NoError(t, err)

	clock = clock.Add(time.Second)
	idle, _ := s.GetOrCreate("")

	// At capacity busy is least recently used, but its question is
	// still unanswered, so idle is the victim instead.
	clock = clock.Add(time.Second)
	third, err := s.GetOrCreate("")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	_, err = s.History(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.History(third)
	assert.NoError(t, err)

	// The in-flight turn can still be completed
	require.NoError(t, s.SetAnswer(busy, turn, "late answer"))
	history, err := s.History(busy)
	require.NoError(t, err)
	assert.Contains(t, history, "late answer")
}

func TestEviction_AllTurnsInFlight(t *testing.T) {
	s := NewMemoryStore(Config{MaxSessions: 2, IdleTTL: -1})

	clock := time.Now()
	s.now = func() time.Time { return clock }

	a, _ := s.GetOrCreate("")
	_, err := s.AppendQuestion(a, "qa")
	require.NoError(t, err)

	clock = clock.Add(time.Second)
	b, _ := s.GetOrCreate("")
	_, err = s.AppendQuestion(b, "qb")
	require.NoError(t, err)

	// Every candidate has an unanswered turn; the cap still holds and
	// the oldest goes.
	clock = clock.Add(time.Second)
	_, err = s.GetOrCreate("")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	_, err = s.History(a)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.History(b)
	assert.NoError(t, err)
}

func TestConcurrentTouchAndEvictionScan(t *testing.T) {
	// AppendQuestion and SetAnswer bump a session's activity timestamp
	// under the per-session mutex while GetOrCreate scans every
	// timestamp under the store mutex; the two must be safe together.
	s := NewMemoryStore(Config{})
	id, err := s.GetOrCreate("")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			turn, err := s.AppendQuestion(id, "q")
			assert.NoError(t, err)
			assert.NoError(t, s.SetAnswer(id, turn, "a"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := s.GetOrCreate(fmt.Sprintf("other-%d", i))
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	history, err := s.History(id)
	require.NoError(t, err)
	assert.Contains(t, history, "User: q")
}

func TestReset(t *testing.T) {
	s := NewMemoryStore(Config{})
	id, _ := s.GetOrCreate("")

	s.Reset()
	assert.Equal(t, 0, s.Len())
	_, err := s.History(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentSessionsDoNotInterfere(t *testing.T) {
	s := NewMemoryStore(Config{})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id, err := s.GetOrCreate("")
			assert.NoError(t, err)
			for i := 0; i < 20; i++ {
				turn, err := s.AppendQuestion(id, fmt.Sprintf("w%d q%d", w, i))
				assert.NoError(t, err)
				assert.NoError(t, s.SetAnswer(id, turn, "a"))
			}
			history, err := s.History(id)
			assert.NoError(t, err)
			assert.Contains(t, history, fmt.Sprintf("w%d q0", w))
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 8, s.Len())
}
