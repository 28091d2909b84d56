// Package compressor shrinks assembled context through the ScaleDown
// compression service before it reaches the generation model.
//
// Compression is strictly best-effort: a missing credential, transport
// error, timeout, non-2xx response, unsuccessful result, or empty
// payload all fall back to the uncompressed input. A query must never
// fail because this service is unreachable.
package compressor

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultEndpoint is the ScaleDown raw compression endpoint.
	DefaultEndpoint = "https://api.scaledown.xyz/compress/raw/"

	// DefaultTimeout bounds the whole compression round-trip.
	DefaultTimeout = 8 * time.Second

	// EnvAPIKey is the environment variable holding the service key.
	EnvAPIKey = "SCALEDOWN_API_KEY"
)

// Config configures the compression client. Zero values select the
// defaults; an empty APIKey disables compression entirely.
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Client calls the ScaleDown compression service.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// New creates a compression client from cfg.
func New(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewFromEnv creates a client keyed from the SCALEDOWN_API_KEY
// environment variable. The client works without a key; it just never
// compresses.
func NewFromEnv() *Client {
	return New(Config{APIKey: os.Getenv(EnvAPIKey)})
}

type compressRequest struct {
	Context   string          `json:"context"`
	Prompt    string          `json:"prompt"`
	ScaleDown compressOptions `json:"scaledown"`
}

type compressOptions struct {
	Rate string `json:"rate"`
}

type compressResponse struct {
	Successful       bool   `json:"successful"`
	CompressedPrompt string `json:"compressed_prompt"`
}

// Compress sends the assembled context and the question to the service
// and returns the compressed context. On any failure the input context
// is returned byte-for-byte unchanged.
func (c *Client) Compress(ctx context.Context, contextText, question string) string {
	if c.apiKey == "" {
		return contextText
	}

	body, err := json.Marshal(compressRequest{
		Context:   contextText,
		Prompt:    question,
		ScaleDown: compressOptions{Rate: "auto"},
	})
	if err != nil {
		return contextText
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return contextText
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("compressor: request failed, using raw context: %v", err)
		return contextText
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("compressor: service returned status %d, using raw context", resp.StatusCode)
		return contextText
	}

	var result compressResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return contextText
	}
	if !result.Successful || result.CompressedPrompt == "" {
		return contextText
	}

	return result.CompressedPrompt
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}
