package types

import (
	"crypto/sha256"
	"errors"
	"strings"
)

// SourceFile is a single text file produced by a corpus scan.
// It is transient: consumed by the chunker and never persisted.
type SourceFile struct {
	Path    string // Stable identifier, relative to the corpus root
	Content string
}

// Chunk represents a bounded character-range slice of a source file's text,
// the unit of embedding and retrieval.
type Chunk struct {
	// Identification
	Source string // Owning source file path

	// Location: character span [Start, End) within the file's text
	Start int
	End   int

	// Content
	Text string
}

// ValidateSpan checks that the chunk's span is well formed.
func (c *Chunk) ValidateSpan() error {
	if c.Start < 0 {
		return errors.New("chunk start must be non-negative")
	}

	if c.End <= c.Start {
		return errors.New("chunk end must be after start")
	}

	if len(c.Text) != c.End-c.Start {
		return errors.New("chunk text length must match span")
	}

	return nil
}

// IsBlank reports whether the chunk is empty after trimming whitespace.
// Blank chunks are discarded before indexing.
func (c *Chunk) IsBlank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if c.Source == "" {
		return errors.New("chunk source is required")
	}

	if err := c.ValidateSpan(); err != nil {
		return err
	}

	if c.IsBlank() {
		return errors.New("chunk text cannot be blank")
	}

	return nil
}

// ContentHash computes the SHA-256 hash of the chunk text.
// Used for embedding cache keys and deduplication.
func (c *Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Text))
}
