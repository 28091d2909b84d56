package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/indexer"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/query"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNoRepository  = -32001 // No repository loaded
	ErrorCodeBuilderBusy   = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed    = -32003 // Repository not indexed
	ErrorCodeEmptyQuestion = -32004 // Question parameter is empty
	ErrorCodeIngestFailed  = -32005 // Clone or extraction failed
)

// handleLoadRepository handles the load_repository tool invocation
func (s *Server) handleLoadRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repoURL, ok := args["repo_url"].(string)
	if !ok || repoURL == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "repo_url parameter is required", map[string]interface{}{
			"param":  "repo_url",
			"reason": "missing or empty",
		})
	}

	target, err := s.store.CloneRepo(ctx, repoURL)
	if err != nil {
		return nil, newMCPError(ErrorCodeIngestFailed, "clone failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// The previous index described the previous corpus
	s.manager.Invalidate()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"loaded":    true,
		"repo_path": target,
		"message":   "Repository cloned. Use index_repository before asking questions.",
	})), nil
}

// handleLoadArchive handles the load_archive tool invocation
func (s *Server) handleLoadArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	archivePath, ok := args["archive_path"].(string)
	if !ok || archivePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "archive_path parameter is required", map[string]interface{}{
			"param":  "archive_path",
			"reason": "missing or empty",
		})
	}

	target, err := s.store.ExtractArchive(archivePath)
	if err != nil {
		return nil, newMCPError(ErrorCodeIngestFailed, "extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.manager.Invalidate()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"loaded":    true,
		"repo_path": target,
		"message":   "Archive extracted. Use index_repository before asking questions.",
	})), nil
}

// handleIndexRepository handles the index_repository tool invocation
func (s *Server) handleIndexRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.store.HasRepo() {
		return nil, newMCPError(ErrorCodeNoRepository, "no repository loaded", map[string]interface{}{
			"message": "Load a repository with load_repository or load_archive first.",
		})
	}

	stats, err := s.indexer.Build(ctx, s.store.RepoDir)
	if err != nil {
		if errors.Is(err, indexer.ErrBuildInProgress) {
			return nil, newMCPError(ErrorCodeBuilderBusy, "indexing already in progress", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":        true,
		"files_scanned":  stats.FilesScanned,
		"files_skipped":  stats.FilesSkipped,
		"chunks_indexed": stats.ChunksIndexed,
		"duration_ms":    stats.Duration.Milliseconds(),
	}

	if len(stats.Warnings) > 0 {
		// Include the first few skip reasons
		warnings := make([]string, 0, 5)
		for _, w := range stats.Warnings {
			if len(warnings) == 5 {
				break
			}
			warnings = append(warnings, fmt.Sprintf("%s: %s", w.Path, w.Reason))
		}
		response["warnings"] = warnings
		response["warning_count"] = len(stats.Warnings)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAskQuestion handles the ask_question tool invocation
func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return nil, newMCPError(ErrorCodeEmptyQuestion, "question parameter is required and cannot be empty", map[string]interface{}{
			"param":  "question",
			"reason": "missing or empty",
		})
	}

	sessionID := getStringDefault(args, "session_id", "")

	result, err := s.engine.Answer(ctx, sessionID, question)
	if err != nil {
		if errors.Is(err, types.ErrIndexNotFound) {
			return nil, newMCPError(ErrorCodeNotIndexed, "repository not indexed", map[string]interface{}{
				"message": "Index the repository with index_repository before asking questions.",
			})
		}
		if errors.Is(err, query.ErrEmptyQuestion) {
			return nil, newMCPError(ErrorCodeEmptyQuestion, "question cannot be blank", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "answering failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": result.SessionID,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"answer":     result.Answer,
		"session_id": result.SessionID,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"repository_loaded": s.store.HasRepo(),
		"indexed":           false,
	}

	count, dimension, err := s.manager.Stats(ctx)
	switch {
	case err == nil:
		response["indexed"] = true
		response["statistics"] = map[string]interface{}{
			"chunks_count": count,
			"dimension":    dimension,
		}
	case errors.Is(err, types.ErrIndexNotFound):
		response["message"] = "Repository not indexed. Use index_repository to build the index."
	default:
		return nil, newMCPError(ErrorCodeInternalError, "failed to read index status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReset handles the reset tool invocation
func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.store.Reset(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "reset failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.manager.Invalidate()
	s.engine.Reset()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"reset":   true,
		"message": "Repository, index, and sessions cleared.",
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
