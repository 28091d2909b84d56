package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

const (
	// DefaultWindow is the default chunk window size in characters.
	// Large enough to contain a function body, small enough to keep
	// retrieval precise.
	DefaultWindow = 800

	// DefaultOverlap is the default overlap between consecutive chunks.
	// Overlap prevents semantic truncation exactly at a window boundary.
	DefaultOverlap = 100
)

// Chunker splits file text into overlapping fixed-size character windows.
type Chunker struct {
	window  int
	overlap int
}

// New creates a Chunker with the given window and overlap.
// Requires 0 < overlap < window.
func New(window, overlap int) (*Chunker, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", window)
	}
	if overlap <= 0 || overlap >= window {
		return nil, fmt.Errorf("overlap must satisfy 0 < overlap < window, got overlap=%d window=%d", overlap, window)
	}
	return &Chunker{window: window, overlap: overlap}, nil
}

// NewDefault creates a Chunker with the default 800/100 window.
func NewDefault() *Chunker {
	c, err := New(DefaultWindow, DefaultOverlap)
	if err != nil {
		// Unreachable with the package defaults
		panic(err)
	}
	return c
}

// Window returns the configured window size.
func (c *Chunker) Window() int { return c.window }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// ChunkFile splits a source file into ordered chunks. The first chunk
// starts at offset 0, each subsequent start advances by window - overlap,
// and the last chunk's end is truncated to the text length. Offsets are
// bytes, but both edges of every emitted chunk are snapped back to the
// nearest rune start so a multibyte character is never split. Snapping
// backward keeps coverage of [0, len(text)) gap-free. Whitespace-only
// chunks are dropped.
func (c *Chunker) ChunkFile(file types.SourceFile) []types.Chunk {
	text := file.Content
	if len(text) == 0 {
		return nil
	}

	stride := c.window - c.overlap
	chunks := make([]types.Chunk, 0, c.ChunkCount(len(text)))

	for start := 0; ; start += stride {
		end := start + c.window
		if end > len(text) {
			end = len(text)
		}

		from := snapToRuneStart(text, start)
		to := snapToRuneStart(text, end)

		chunk := types.Chunk{
			Source: file.Path,
			Start:  from,
			End:    to,
			Text:   text[from:to],
		}
		if !chunk.IsBlank() {
			chunks = append(chunks, chunk)
		}

		// The window that reaches the end of the text is the last one;
		// advancing further would only produce a sub-window of it.
		if start+c.window >= len(text) {
			break
		}
	}

	return chunks
}

// snapToRuneStart moves i backward to the nearest UTF-8 rune boundary.
// ASCII text is unaffected.
func snapToRuneStart(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// ChunkCount returns the number of windows produced for a text of the
// given length, before blank-chunk filtering.
func (c *Chunker) ChunkCount(textLen int) int {
	if textLen <= 0 {
		return 0
	}
	stride := c.window - c.overlap
	n := textLen - c.overlap
	if n < 1 {
		n = 1
	}
	return (n + stride - 1) / stride
}
