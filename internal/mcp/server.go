package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/chunker"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/compressor"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/config"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/embedder"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/generator"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/indexer"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/ingest"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/query"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/scanner"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/session"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/vecindex"
)

const (
	// ServerName is the MCP server name
	ServerName = "codenav"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    *ingest.Store
	indexer  *indexer.Indexer
	manager  *vecindex.Manager
	engine   *query.Engine
	embedder embedder.Embedder
	gen      generator.Generator
}

// NewServer creates a new MCP server instance from the loaded
// configuration, wiring the whole pipeline.
func NewServer(cfg *config.Config) (*Server, error) {
	store := ingest.NewStore(cfg.DataDir)

	chunk, err := chunker.New(cfg.Chunker.Window, cfg.Chunker.Overlap)
	if err != nil {
		return nil, fmt.Errorf("configure chunker: %w", err)
	}

	// An explicit config provider wins; otherwise environment detection
	// picks between ollama, openai, and local.
	var emb embedder.Embedder
	if cfg.Embedder.Provider != "" {
		emb, err = embedder.New(embedder.Config{
			Provider:  cfg.Embedder.Provider,
			Host:      cfg.Embedder.Host,
			APIKey:    os.Getenv(embedder.EnvOpenAIAPIKey),
			CacheSize: cfg.Embedder.CacheSize,
		})
	} else {
		emb, err = embedder.NewFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	manager := vecindex.NewManager(store.IndexDir)

	idx := indexer.New(scanner.New(scanner.Config{AllowedExtensions: cfg.Scanner.Extensions}), chunk, emb, manager, indexer.Config{})

	gen := generator.NewOllama(generator.Config{
		Host:       cfg.Generator.Host,
		Model:      cfg.Generator.Model,
		NumCtx:     cfg.Generator.NumCtx,
		NumPredict: cfg.Generator.NumPredict,
	})

	compress := compressor.New(compressor.Config{
		APIKey:   os.Getenv(compressor.EnvAPIKey),
		Endpoint: cfg.Compressor.Endpoint,
		Timeout:  cfg.CompressorTimeout(),
	})

	sessions := session.NewMemoryStore(session.Config{
		MaxSessions: cfg.Session.MaxSessions,
		IdleTTL:     cfg.SessionIdleTTL(),
	})

	engine := query.New(sessions, emb, manager, compress, gen, query.Config{TopK: cfg.Query.TopK})

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		store:    store,
		indexer:  idx,
		manager:  manager,
		engine:   engine,
		embedder: emb,
		gen:      gen,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.gen.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(loadRepositoryTool(), s.handleLoadRepository)
	s.mcp.AddTool(loadArchiveTool(), s.handleLoadArchive)
	s.mcp.AddTool(indexRepositoryTool(), s.handleIndexRepository)
	s.mcp.AddTool(askQuestionTool(), s.handleAskQuestion)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(resetTool(), s.handleReset)
}
