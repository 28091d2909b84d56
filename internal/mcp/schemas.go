package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// loadRepositoryTool returns the tool definition for load_repository
func loadRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "load_repository",
		Description: "Clone a git repository into the working corpus, replacing any previously loaded code and index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repo_url": map[string]interface{}{
					"type":        "string",
					"description": "Clone URL of the repository (https or ssh)",
				},
			},
			Required: []string{"repo_url"},
		},
	}
}

// loadArchiveTool returns the tool definition for load_archive
func loadArchiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "load_archive",
		Description: "Extract a zip archive into the working corpus, replacing any previously loaded code and index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"archive_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to a zip archive containing the repository",
				},
			},
			Required: []string{"archive_path"},
		},
	}
}

// indexRepositoryTool returns the tool definition for index_repository
func indexRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_repository",
		Description: "Scan, chunk, and embed the loaded repository into the vector index so it can be queried",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// askQuestionTool returns the tool definition for ask_question
func askQuestionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a natural-language question about the indexed repository. Pass the returned session_id on follow-up questions to keep conversational context",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer from the indexed code",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session identifier from a previous answer; omit to start a new conversation",
				},
			},
			Required: []string{"question"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report whether a repository is loaded and indexed, with index statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// resetTool returns the tool definition for reset
func resetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reset",
		Description: "Delete the loaded repository, the index, and all conversation sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
