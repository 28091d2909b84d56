package vecindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// Entry pairs a chunk with its embedding vector for index construction.
type Entry struct {
	Chunk  types.Chunk
	Vector []float32
}

// Index is an immutable in-memory nearest-neighbor structure over chunk
// embeddings. Once built it is never mutated, so concurrent searches
// need no locking; rebuilds publish a fresh Index through the Manager.
type Index struct {
	dimension int
	vectors   [][]float32
	chunks    []types.Chunk
}

// Build constructs an Index from (chunk, vector) pairs. All vectors must
// share one dimension; blank chunks are rejected.
func Build(entries []Entry) (*Index, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("cannot build index from zero entries")
	}

	dim := len(entries[0].Vector)
	if dim == 0 {
		return nil, fmt.Errorf("entry 0 has an empty vector")
	}

	idx := &Index{
		dimension: dim,
		vectors:   make([][]float32, 0, len(entries)),
		chunks:    make([]types.Chunk, 0, len(entries)),
	}

	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("entry %d: vector dimension %d, want %d", i, len(e.Vector), dim)
		}
		if err := e.Chunk.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		idx.vectors = append(idx.vectors, e.Vector)
		idx.chunks = append(idx.chunks, e.Chunk)
	}

	return idx, nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimension returns the vector dimension of the index.
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Search returns the k nearest chunks to the query vector, ordered by
// ascending L2 distance with ties broken by insertion order. A k larger
// than the index size returns all entries.
func (idx *Index) Search(query []float32, k int) ([]types.SearchResult, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), idx.dimension)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if k > len(idx.vectors) {
		k = len(idx.vectors)
	}

	type scored struct {
		pos      int
		distance float64
	}

	candidates := make([]scored, len(idx.vectors))
	for i, v := range idx.vectors {
		candidates[i] = scored{pos: i, distance: l2Distance(query, v)}
	}

	// Stable sort preserves insertion order between equal distances
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	results := make([]types.SearchResult, k)
	for i := 0; i < k; i++ {
		c := idx.chunks[candidates[i].pos]
		results[i] = types.SearchResult{
			Rank:     i + 1,
			Distance: candidates[i].distance,
			Source:   c.Source,
			Text:     c.Text,
		}
	}

	return results, nil
}

// l2Distance computes the Euclidean distance between two vectors of
// equal length.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
