package types

// SearchResult represents a single retrieved chunk with distance information.
type SearchResult struct {
	// Identification
	Rank int // Position in result set (1-based)

	// Scoring: L2 distance to the query vector, lower is better
	Distance float64

	// Metadata
	Source string // Source file path the chunk came from
	Text   string // Chunk text
}

// Validate checks if the search result is valid.
func (sr *SearchResult) Validate() error {
	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.Distance < 0 {
		return ErrInvalidDistance
	}

	if sr.Source == "" {
		return ErrMissingSource
	}

	if sr.Text == "" {
		return ErrEmptyContent
	}

	return nil
}

// QueryResult is the outcome of one answered question: the generated answer
// text and the session identifier it belongs to.
type QueryResult struct {
	Answer    string
	SessionID string
}
