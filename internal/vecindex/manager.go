package vecindex

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// Manager owns the shared index handle for one on-disk location. The
// in-memory Index is immutable and published with a single atomic
// pointer swap, so searches always run against the complete handle they
// captured at call start and never a half-written state.
type Manager struct {
	location string

	handle atomic.Pointer[Index]
	// diskMu serializes disk access: lazy loads and the save+swap of a
	// rebuild. Searches against an already-published handle never take it.
	diskMu sync.Mutex
}

// NewManager creates a Manager for the index at location. No load is
// attempted until the first search.
func NewManager(location string) *Manager {
	return &Manager{location: location}
}

// Location returns the on-disk index location.
func (m *Manager) Location() string {
	return m.location
}

// Search embeds no text itself: it takes a ready query vector and
// returns the k nearest chunks. A location that has never been built
// yields ErrIndexNotFound.
func (m *Manager) Search(ctx context.Context, query []float32, k int) ([]types.SearchResult, error) {
	idx, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Search(query, k)
}

// Rebuild constructs a new index from entries, persists it, and
// publishes it. The previous handle stays live for in-flight searches
// until the swap; a failed rebuild leaves both the previous handle and
// the previous on-disk index untouched.
func (m *Manager) Rebuild(ctx context.Context, entries []Entry) (*Index, error) {
	idx, err := Build(entries)
	if err != nil {
		return nil, err
	}

	m.diskMu.Lock()
	defer m.diskMu.Unlock()

	if err := Save(ctx, idx, m.location); err != nil {
		return nil, err
	}

	m.handle.Store(idx)
	return idx, nil
}

// Invalidate drops the in-memory handle, forcing the next search to
// reload from disk. Used after the on-disk index is removed by a reset.
func (m *Manager) Invalidate() {
	m.diskMu.Lock()
	defer m.diskMu.Unlock()
	m.handle.Store(nil)
}

// Stats reports the size and dimension of the current handle, loading
// it if needed.
func (m *Manager) Stats(ctx context.Context) (count, dimension int, err error) {
	idx, err := m.current(ctx)
	if err != nil {
		return 0, 0, err
	}
	return idx.Len(), idx.Dimension(), nil
}

// current returns the published handle, lazily loading from disk on
// first use.
func (m *Manager) current(ctx context.Context) (*Index, error) {
	if idx := m.handle.Load(); idx != nil {
		return idx, nil
	}

	m.diskMu.Lock()
	defer m.diskMu.Unlock()

	// Another caller may have loaded while we waited
	if idx := m.handle.Load(); idx != nil {
		return idx, nil
	}

	idx, err := Load(ctx, m.location)
	if err != nil {
		return nil, err
	}

	m.handle.Store(idx)
	return idx, nil
}
