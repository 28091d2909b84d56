package embedder

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnsupportedModel  = errors.New("unsupported model")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding is one text mapped into vector space, tagged with the
// provider and model that produced it.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Key       Key // cache key of the source text
}

// EmbeddingRequest asks for one text, typically a question, to be
// embedded. Model overrides the provider default when set.
type EmbeddingRequest struct {
	Text  string
	Model string
}

// Validate rejects a request with nothing to embed.
func (r EmbeddingRequest) Validate() error {
	if r.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// BatchEmbeddingRequest asks for several texts in one call, as the
// indexer does when it embeds a batch of chunks.
type BatchEmbeddingRequest struct {
	Texts []string
	Model string
}

// Validate rejects empty batches and blank entries. The chunker drops
// whitespace-only chunks, so a well-formed build never trips this.
func (r BatchEmbeddingRequest) Validate() error {
	if len(r.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range r.Texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}

// BatchEmbeddingResponse carries one embedding per input text, in
// input order.
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
}

// Embedder turns text into fixed-dimension vectors. One implementation
// embeds both the indexed chunks and the incoming questions, so its
// Dimension must stay stable across calls.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension is the vector width this provider produces.
	Dimension() int
	Provider() string
	Model() string
	Close() error
}

// Key identifies a text by its SHA-256 digest. It is the same digest
// chunk content hashes use, so an unchanged chunk re-embedded by a
// later build hits the cache.
type Key [32]byte

// KeyFor computes the cache key for a text.
func KeyFor(text string) Key {
	return sha256.Sum256([]byte(text))
}

// DefaultCacheSize bounds the cache when no size is configured.
const DefaultCacheSize = 10000

// Cache is an LRU of embeddings keyed by text content. Rebuilding an
// index over a mostly unchanged corpus re-embeds only what changed.
type Cache struct {
	entries *lru.Cache[Key, Embedding]
}

// NewCache creates a cache holding at most maxLen embeddings.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	// lru.New fails only for a non-positive size, excluded above
	entries, _ := lru.New[Key, Embedding](maxLen)
	return &Cache{entries: entries}
}

// Get returns the cached embedding for key. The vector is cloned so
// callers cannot mutate the cached copy.
func (c *Cache) Get(key Key) (*Embedding, bool) {
	emb, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	emb.Vector = slices.Clone(emb.Vector)
	return &emb, true
}

// Set stores an embedding under key, evicting the least recently used
// entry when full. The vector is cloned on the way in so later caller
// mutations cannot reach the cache.
func (c *Cache) Set(key Key, emb *Embedding) {
	stored := *emb
	stored.Vector = slices.Clone(emb.Vector)
	c.entries.Add(key, stored)
}

// Size reports the number of cached embeddings.
func (c *Cache) Size() int {
	return c.entries.Len()
}

// Clear drops every cached embedding.
func (c *Cache) Clear() {
	c.entries.Purge()
}
