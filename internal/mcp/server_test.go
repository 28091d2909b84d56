package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/config"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/embedder"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	// Offline deterministic embedder so no model server is needed
	cfg.Embedder.Provider = embedder.ProviderLocal

	s, err := NewServer(cfg)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "tool results are text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestNewServer_Components(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.store)
	assert.NotNil(t, s.indexer)
	assert.NotNil(t, s.manager)
	assert.NotNil(t, s.engine)
}

func TestGetStatus_FreshServer(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)

	response := resultText(t, result)
	assert.Equal(t, false, response["repository_loaded"])
	assert.Equal(t, false, response["indexed"])
	assert.Contains(t, response["message"], "index_repository")
}

func TestIndexRepository_WithoutRepo(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleIndexRepository(context.Background(), callRequest("index_repository", nil))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeNoRepository, mcpErr.Code)
}

func TestAskQuestion_MissingQuestion(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAskQuestion(context.Background(), callRequest("ask_question", map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeEmptyQuestion, mcpErr.Code)
}

func TestAskQuestion_BeforeIndexing(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAskQuestion(context.Background(), callRequest("ask_question", map[string]interface{}{
		"question": "what does this project do?",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeNotIndexed, mcpErr.Code)
}

func TestLoadRepository_MissingURL(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleLoadRepository(context.Background(), callRequest("load_repository", map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestLoadArchive_BadPath(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleLoadArchive(context.Background(), callRequest("load_archive", map[string]interface{}{
		"archive_path": filepath.Join(t.TempDir(), "missing.zip"),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeIngestFailed, mcpErr.Code)
}

func TestIndexThenStatus(t *testing.T) {
	s := newTestServer(t)

	// Place a corpus where a load would put it
	require.NoError(t, os.MkdirAll(s.store.RepoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.store.RepoDir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	result, err := s.handleIndexRepository(context.Background(), callRequest("index_repository", nil))
	require.NoError(t, err)

	response := resultText(t, result)
	assert.Equal(t, true, response["indexed"])
	assert.EqualValues(t, 1, response["files_scanned"])
	assert.EqualValues(t, 1, response["chunks_indexed"])

	status, err := s.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)

	statusResponse := resultText(t, status)
	assert.Equal(t, true, statusResponse["indexed"])
	stats, ok := statusResponse["statistics"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, stats["chunks_count"])
	assert.EqualValues(t, embedder.LocalDimension, stats["dimension"])
}

func TestReset_ClearsEverything(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, os.MkdirAll(s.store.RepoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.store.RepoDir, "main.go"), []byte("package main\n"), 0o644))

	_, err := s.handleIndexRepository(context.Background(), callRequest("index_repository", nil))
	require.NoError(t, err)

	result, err := s.handleReset(context.Background(), callRequest("reset", nil))
	require.NoError(t, err)
	assert.Equal(t, true, resultText(t, result)["reset"])

	status, err := s.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)

	statusResponse := resultText(t, status)
	assert.Equal(t, false, statusResponse["repository_loaded"])
	assert.Equal(t, false, statusResponse["indexed"])
}
