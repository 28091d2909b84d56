package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

func TestBuildContext_LabeledBlocks(t *testing.T) {
	results := []types.SearchResult{
		{Rank: 1, Source: "internal/auth/login.go", Text: "func Login() {}"},
		{Rank: 2, Source: "internal/auth/token.go", Text: "func Mint() {}"},
	}

	got := BuildContext(results)
	want := "[internal/auth/login.go]\nfunc Login() {}\n\n[internal/auth/token.go]\nfunc Mint() {}"
	assert.Equal(t, want, got)
}

func TestBuildContext_PreservesOrder(t *testing.T) {
	results := []types.SearchResult{
		{Rank: 1, Source: "b.go", Text: "closest match"},
		{Rank: 2, Source: "a.go", Text: "runner-up"},
	}

	got := BuildContext(results)
	assert.Less(t, strings.Index(got, "[b.go]"), strings.Index(got, "[a.go]"))
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
	assert.Equal(t, "", BuildContext([]types.SearchResult{}))
}

func TestBuildPrompt_Sections(t *testing.T) {
	got := BuildPrompt("[a.go]\nsome chunk", "User: hi\nAssistant: hello\n", "what does a.go do?")

	assert.Contains(t, got, "You are a codebase expert.")
	assert.Contains(t, got, "Context:\n[a.go]\nsome chunk")
	assert.Contains(t, got, "Conversation so far:\nUser: hi\nAssistant: hello\n")
	assert.Contains(t, got, "Question:\nwhat does a.go do?")
	assert.Contains(t, got, "mention file paths")

	// Context precedes history precedes question
	assert.Less(t, strings.Index(got, "Context:"), strings.Index(got, "Conversation so far:"))
	assert.Less(t, strings.Index(got, "Conversation so far:"), strings.Index(got, "Question:"))
}

func TestBuildPrompt_NoHistorySection(t *testing.T) {
	got := BuildPrompt("ctx", "", "q")
	assert.NotContains(t, got, "Conversation so far:")
}
