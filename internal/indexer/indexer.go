package indexer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/chunker"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/embedder"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/scanner"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/vecindex"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// Common errors
var (
	// ErrBuildInProgress is returned when a build is requested while
	// another build for the same index is still running.
	ErrBuildInProgress = errors.New("index build already in progress")

	// ErrNoChunks is returned when the corpus yields nothing to index.
	ErrNoChunks = errors.New("corpus produced no indexable chunks")
)

// Indexer coordinates the build pipeline: scan -> chunk -> embed -> index.
type Indexer struct {
	scanner  *scanner.Scanner
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	manager  *vecindex.Manager

	workers   int
	batchSize int
	lock      buildLock
}

// Config contains configuration for the indexer.
type Config struct {
	Workers   int // Number of concurrent embedding batches (default: runtime.NumCPU())
	BatchSize int // Number of chunks per embedding request (default: 32)
}

// Statistics describes one completed build.
type Statistics struct {
	FilesScanned  int
	FilesSkipped  int
	ChunksIndexed int
	Duration      time.Duration
	Warnings      []scanner.Warning
}

// New creates an Indexer over the given components.
func New(scan *scanner.Scanner, chunk *chunker.Chunker, embed embedder.Embedder, manager *vecindex.Manager, cfg Config) *Indexer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	return &Indexer{
		scanner:   scan,
		chunker:   chunk,
		embedder:  embed,
		manager:   manager,
		workers:   workers,
		batchSize: batchSize,
	}
}

// Build scans the corpus rooted at rootPath, chunks and embeds every
// eligible file, and atomically replaces the index. At most one build
// runs at a time; a concurrent request gets ErrBuildInProgress. On any
// failure the previous index, in memory and on disk, stays intact.
func (idx *Indexer) Build(ctx context.Context, rootPath string) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrBuildInProgress
	}
	defer idx.lock.Release()

	startTime := time.Now()

	var chunks []types.Chunk
	report, err := idx.scanner.Scan(rootPath, func(file types.SourceFile) error {
		chunks = append(chunks, idx.chunker.ChunkFile(file)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, rootPath)
	}

	vectors, err := idx.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	entries := make([]vecindex.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = vecindex.Entry{Chunk: chunk, Vector: vectors[i]}
	}

	if _, err := idx.manager.Rebuild(ctx, entries); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	return &Statistics{
		FilesScanned:  report.FilesScanned,
		FilesSkipped:  len(report.Warnings),
		ChunksIndexed: len(chunks),
		Duration:      time.Since(startTime),
		Warnings:      report.Warnings,
	}, nil
}

// embedChunks embeds all chunks in batches, idx.workers batches in
// flight at once. The returned slice is index-aligned with chunks.
func (idx *Indexer) embedChunks(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	semaphore := make(chan struct{}, idx.workers)
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(chunks); start += idx.batchSize {
		end := min(start+idx.batchSize, len(chunks))

		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			texts := make([]string, 0, end-start)
			for _, chunk := range chunks[start:end] {
				texts = append(texts, chunk.Text)
			}

			resp, err := idx.embedder.GenerateBatch(gctx, embedder.BatchEmbeddingRequest{Texts: texts})
			if err != nil {
				return fmt.Errorf("batch [%d:%d]: %w", start, end, err)
			}
			if len(resp.Embeddings) != end-start {
				return fmt.Errorf("batch [%d:%d]: got %d embeddings for %d texts", start, end, len(resp.Embeddings), end-start)
			}

			for i, emb := range resp.Embeddings {
				vectors[start+i] = emb.Vector
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
