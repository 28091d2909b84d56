package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/chunker"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/compressor"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/embedder"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/generator"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/indexer"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/query"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/scanner"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/session"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/vecindex"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// PipelineTestSuite exercises the full index-then-ask flow with an
// offline embedder and a fake model server.
type PipelineTestSuite struct {
	suite.Suite
	ctx context.Context

	corpusDir string
	indexDir  string

	modelSrv *httptest.Server
	prompts  []string

	manager *vecindex.Manager
	indexer *indexer.Indexer
	engine  *query.Engine
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.corpusDir = s.T().TempDir()
	s.indexDir = filepath.Join(s.T().TempDir(), "index")
	s.prompts = nil

	// Fake Ollama: echoes a fixed answer and records every prompt
	s.modelSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.prompts = append(s.prompts, req.Prompt)

		enc := json.NewEncoder(w)
		_ = enc.Encode(map[string]interface{}{"response": "answer about the corpus"})
		_ = enc.Encode(map[string]interface{}{"response": "", "done": true})
	}))

	emb := embedder.NewLocalProvider(embedder.NewCache(1000))
	s.manager = vecindex.NewManager(s.indexDir)
	s.indexer = indexer.New(scanner.New(scanner.Config{}), chunker.NewDefault(), emb, s.manager, indexer.Config{})
	s.engine = query.New(
		session.NewMemoryStore(session.Config{}),
		emb,
		s.manager,
		compressor.New(compressor.Config{}),
		generator.NewOllama(generator.Config{Host: s.modelSrv.URL}),
		query.Config{},
	)
}

func (s *PipelineTestSuite) TearDownTest() {
	s.modelSrv.Close()
}

func (s *PipelineTestSuite) writeCorpus(files map[string]string) {
	for rel, content := range files {
		path := filepath.Join(s.corpusDir, rel)
		s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))
		s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	}
}

func (s *PipelineTestSuite) TestIndexThenAsk() {
	s.writeCorpus(map[string]string{
		"auth/login.go": "package auth\n\n// Login verifies credentials.\nfunc Login(user, pass string) error { return nil }\n",
		"store/db.go":   "package store\n\nfunc Connect(dsn string) error { return nil }\n",
		"README.md":     "# sample service\n",
	})

	stats, err := s.indexer.Build(s.ctx, s.corpusDir)
	s.Require().NoError(err)
	s.Equal(3, stats.FilesScanned)
	s.Equal(3, stats.ChunksIndexed)

	result, err := s.engine.Answer(s.ctx, "", "how are credentials verified?")
	s.Require().NoError(err)
	s.Equal("answer about the corpus", result.Answer)
	s.NotEmpty(result.SessionID)

	// The model saw retrieved chunks labeled with their source paths
	s.Require().Len(s.prompts, 1)
	s.Contains(s.prompts[0], "how are credentials verified?")
	s.Contains(s.prompts[0], "[")
	s.Contains(s.prompts[0], "]")
}

func (s *PipelineTestSuite) TestConversationCarriesHistory() {
	s.writeCorpus(map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	_, err := s.indexer.Build(s.ctx, s.corpusDir)
	s.Require().NoError(err)

	first, err := s.engine.Answer(s.ctx, "", "what is the entrypoint?")
	s.Require().NoError(err)

	second, err := s.engine.Answer(s.ctx, first.SessionID, "and what does it call?")
	s.Require().NoError(err)
	s.Equal(first.SessionID, second.SessionID)

	s.Require().Len(s.prompts, 2)
	s.Contains(s.prompts[1], "User: what is the entrypoint?")
	s.Contains(s.prompts[1], "Assistant: answer about the corpus")
}

func (s *PipelineTestSuite) TestAskBeforeIndexing() {
	_, err := s.engine.Answer(s.ctx, "", "anything?")
	s.Require().Error(err)
	s.ErrorIs(err, types.ErrIndexNotFound)
	s.Contains(err.Error(), "index the repository first")
	s.Empty(s.prompts, "the model is never called without an index")
}

func (s *PipelineTestSuite) TestIndexSurvivesRestart() {
	s.writeCorpus(map[string]string{"svc.go": "package svc\n\nfunc Handle() {}\n"})

	_, err := s.indexer.Build(s.ctx, s.corpusDir)
	s.Require().NoError(err)

	// A fresh manager simulates a process restart reading from disk
	reloaded := vecindex.NewManager(s.indexDir)
	count, dim, err := reloaded.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal(embedder.LocalDimension, dim)

	engine := query.New(
		session.NewMemoryStore(session.Config{}),
		embedder.NewLocalProvider(nil),
		reloaded,
		compressor.New(compressor.Config{}),
		generator.NewOllama(generator.Config{Host: s.modelSrv.URL}),
		query.Config{},
	)

	result, err := engine.Answer(s.ctx, "", "what does the service handle?")
	s.Require().NoError(err)
	s.Equal("answer about the corpus", result.Answer)
}

func (s *PipelineTestSuite) TestRebuildReplacesCorpus() {
	s.writeCorpus(map[string]string{"old.go": "package old\n\nfunc Gone() {}\n"})
	_, err := s.indexer.Build(s.ctx, s.corpusDir)
	s.Require().NoError(err)

	// Replace corpus contents entirely
	s.Require().NoError(os.Remove(filepath.Join(s.corpusDir, "old.go")))
	s.writeCorpus(map[string]string{"new.go": "package new\n\nfunc Fresh() {}\n"})

	_, err = s.indexer.Build(s.ctx, s.corpusDir)
	s.Require().NoError(err)

	_, err = s.engine.Answer(s.ctx, "", "what is here now?")
	s.Require().NoError(err)

	last := s.prompts[len(s.prompts)-1]
	s.Contains(last, "new.go")
	s.False(strings.Contains(last, "old.go"), "stale chunks never surface after a rebuild")
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
