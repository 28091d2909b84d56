// Package generator produces natural-language answers from assembled
// prompts via a local Ollama model.
//
// The Generator interface is the seam the query orchestrator depends
// on; tests substitute a canned implementation so no model needs to be
// running.
package generator

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrEmptyPrompt is returned when Generate receives no prompt text.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrGenerationFailed wraps transport and model failures.
	ErrGenerationFailed = errors.New("generation failed")
)

// Generator produces a completion for a prompt. Implementations must
// honor ctx cancellation; no internal deadline is imposed because local
// model latency varies by hardware, so callers own the timeout.
type Generator interface {
	// Generate returns the model's answer for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier in use.
	Model() string

	// Close releases resources held by the generator.
	Close() error
}

// ValidatePrompt rejects prompts no model call should be made for.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return fmt.Errorf("%w", ErrEmptyPrompt)
	}
	return nil
}
