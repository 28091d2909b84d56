// Package query composes retrieval, compression, history, and
// generation into a single question-answering operation.
//
// Engine.Answer is the core guarantee of the system: a question plus
// an optional session id in, an answer plus a session id out. All
// collaborators are injected so the orchestration logic tests without
// any live service.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/compressor"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/embedder"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/generator"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/prompt"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/session"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/vecindex"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 2

// ErrEmptyQuestion is returned when Answer receives no question text.
var ErrEmptyQuestion = errors.New("question is empty")

// Searcher is the slice of the index manager the engine needs.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]types.SearchResult, error)
}

// Config tunes the engine. Zero values select the defaults.
type Config struct {
	// TopK is the number of chunks retrieved per question. Every
	// retrieved chunk enters the context; there is no relevance cutoff.
	TopK int
}

// Engine answers questions against the indexed corpus.
type Engine struct {
	sessions   session.Store
	embedder   embedder.Embedder
	searcher   Searcher
	compressor *compressor.Client
	generator  generator.Generator
	topK       int
}

// New creates an Engine over the given collaborators.
func New(sessions session.Store, embed embedder.Embedder, searcher Searcher, compress *compressor.Client, gen generator.Generator, cfg Config) *Engine {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Engine{
		sessions:   sessions,
		embedder:   embed,
		searcher:   searcher,
		compressor: compress,
		generator:  gen,
		topK:       topK,
	}
}

// Answer resolves the session, retrieves the chunks closest to the
// question, assembles and best-effort-compresses the context, and
// generates an answer that is recorded in the session history.
//
// A failure in embedding, search, or generation marks the turn failed
// so it never pollutes later history, and returns the error. Searching
// before any index was built yields a wrapped types.ErrIndexNotFound
// telling the caller to index the repository first.
func (e *Engine) Answer(ctx context.Context, sessionID, question string) (types.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return types.QueryResult{}, ErrEmptyQuestion
	}

	sessionID, err := e.sessions.GetOrCreate(sessionID)
	if err != nil {
		return types.QueryResult{}, fmt.Errorf("resolve session: %w", err)
	}

	turn, err := e.sessions.AppendQuestion(sessionID, question)
	if err != nil {
		return types.QueryResult{}, fmt.Errorf("record question: %w", err)
	}

	// History excludes the just-appended pending turn
	history, err := e.sessions.History(sessionID)
	if err != nil {
		return types.QueryResult{}, fmt.Errorf("render history: %w", err)
	}

	answer, err := e.answerTurn(ctx, question, history)
	if err != nil {
		_ = e.sessions.FailTurn(sessionID, turn, err.Error())
		return types.QueryResult{SessionID: sessionID}, err
	}

	if err := e.sessions.SetAnswer(sessionID, turn, answer); err != nil {
		return types.QueryResult{SessionID: sessionID}, fmt.Errorf("record answer: %w", err)
	}

	return types.QueryResult{Answer: answer, SessionID: sessionID}, nil
}

func (e *Engine) answerTurn(ctx context.Context, question, history string) (string, error) {
	embedding, err := e.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	results, err := e.searcher.Search(ctx, embedding.Vector, e.topK)
	if err != nil {
		if errors.Is(err, types.ErrIndexNotFound) {
			return "", fmt.Errorf("%w: no index found; index the repository first", types.ErrIndexNotFound)
		}
		return "", fmt.Errorf("search index: %w", err)
	}

	rawContext := prompt.BuildContext(results)
	compressed := e.compressor.Compress(ctx, rawContext, question)

	answer, err := e.generator.Generate(ctx, prompt.BuildPrompt(compressed, history, question))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return answer, nil
}

// Reset destroys all conversation sessions.
func (e *Engine) Reset() {
	e.sessions.Reset()
}

var _ Searcher = (*vecindex.Manager)(nil)
