// Package prompt assembles retrieved chunks and conversation history
// into the text sent to the generation model.
//
// Both functions are pure: they allocate their output and never touch
// shared state, so callers may use them from any goroutine.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// BuildContext renders search results as source-labeled blocks:
//
//	[path/to/file.go]
//	chunk text
//
// joined by blank lines, preserving result order. No results yields the
// empty string.
func BuildContext(results []types.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", r.Source, r.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt composes the final generation prompt from the (possibly
// compressed) context, rendered conversation history, and the current
// question. History is omitted entirely when empty so a first question
// carries no dangling section header.
func BuildPrompt(context, history, question string) string {
	var b strings.Builder

	b.WriteString("You are a codebase expert.\n\n")

	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\n")

	if history != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n\n")

	b.WriteString("Explain clearly and mention file paths.\n")

	return b.String()
}
