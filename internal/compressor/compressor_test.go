package compressor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_NoCredentialIsIdentity(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Enabled())

	input := "[a.go]\nfunc main() {}\n\n[b.go]\nvar x = 1"
	got := c.Compress(context.Background(), input, "what is x?")
	assert.Equal(t, input, got, "without a key the context passes through byte-identical")
}

func TestCompress_Success(t *testing.T) {
	var gotKey string
	var gotReq compressRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(compressResponse{
			Successful:       true,
			CompressedPrompt: "compressed context",
		})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "test-key", Endpoint: srv.URL})

	got := c.Compress(context.Background(), "long raw context", "the question")
	assert.Equal(t, "compressed context", got)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "long raw context", gotReq.Context)
	assert.Equal(t, "the question", gotReq.Prompt)
	assert.Equal(t, "auto", gotReq.ScaleDown.Rate)
}

func TestCompress_UnsuccessfulFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(compressResponse{Successful: false})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", Endpoint: srv.URL})
	assert.Equal(t, "raw", c.Compress(context.Background(), "raw", "q"))
}

func TestCompress_EmptyCompressedFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(compressResponse{Successful: true, CompressedPrompt: ""})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", Endpoint: srv.URL})
	assert.Equal(t, "raw", c.Compress(context.Background(), "raw", "q"))
}

func TestCompress_HTTPErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", Endpoint: srv.URL})
	assert.Equal(t, "raw", c.Compress(context.Background(), "raw", "q"))
}

func TestCompress_MalformedBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", Endpoint: srv.URL})
	assert.Equal(t, "raw", c.Compress(context.Background(), "raw", "q"))
}

func TestCompress_TimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(compressResponse{Successful: true, CompressedPrompt: "late"})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	assert.Equal(t, "raw", c.Compress(context.Background(), "raw", "q"))
}

func TestCompress_UnreachableServiceFallsBack(t *testing.T) {
	c := New(Config{APIKey: "k", Endpoint: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Equal(t, "raw", c.Compress(context.Background(), "raw", "q"))
}
