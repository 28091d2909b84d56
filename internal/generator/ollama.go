package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Default configuration values.
const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "qwen2.5:3b-instruct"

	// DefaultNumCtx is the context window passed to the model.
	DefaultNumCtx = 4096
	// DefaultNumPredict caps the tokens generated per answer.
	DefaultNumPredict = 2048

	// EnvOllamaHost overrides the Ollama base URL.
	EnvOllamaHost = "OLLAMA_HOST"
)

// Config configures the Ollama generator. Zero values select the
// defaults.
type Config struct {
	Host       string
	Model      string
	NumCtx     int
	NumPredict int
}

// OllamaGenerator streams completions from a local Ollama server.
type OllamaGenerator struct {
	host       string
	model      string
	numCtx     int
	numPredict int
	httpClient *http.Client
}

// NewOllama creates an Ollama-backed generator. The HTTP client
// carries no timeout; generation time is bounded by the caller's ctx.
func NewOllama(cfg Config) *OllamaGenerator {
	host := cfg.Host
	if host == "" {
		host = os.Getenv(EnvOllamaHost)
	}
	if host == "" {
		host = DefaultHost
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	numCtx := cfg.NumCtx
	if numCtx <= 0 {
		numCtx = DefaultNumCtx
	}
	numPredict := cfg.NumPredict
	if numPredict <= 0 {
		numPredict = DefaultNumPredict
	}

	return &OllamaGenerator{
		host:       strings.TrimSuffix(host, "/"),
		model:      model,
		numCtx:     numCtx,
		numPredict: numPredict,
		httpClient: &http.Client{},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumCtx     int `json:"num_ctx"`
	NumPredict int `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate streams the completion and concatenates the response
// fragments into one answer.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: true,
		Options: generateOptions{
			NumCtx:     g.numCtx,
			NumPredict: g.numPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, resp.StatusCode, string(msg))
	}

	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var fragment generateResponse
		if err := json.Unmarshal(line, &fragment); err != nil {
			return "", fmt.Errorf("%w: decode stream: %v", ErrGenerationFailed, err)
		}
		if fragment.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrGenerationFailed, fragment.Error)
		}

		answer.WriteString(fragment.Response)
		if fragment.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: read stream: %v", ErrGenerationFailed, err)
	}

	return answer.String(), nil
}

// Model returns the model identifier in use.
func (g *OllamaGenerator) Model() string {
	return g.model
}

// Close releases resources.
func (g *OllamaGenerator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}
