// Package config loads runtime configuration from an optional YAML
// file, applying defaults for everything left unset. A missing file is
// not an error: the zero configuration runs entirely on defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/chunker"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/compressor"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/generator"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/query"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/scanner"
	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/internal/session"
)

// DefaultDataDir is where the corpus and index live unless overridden.
const DefaultDataDir = "data"

// Config is the full runtime configuration.
type Config struct {
	DataDir string `yaml:"data_dir"`

	Scanner struct {
		Extensions []string `yaml:"extensions"`
	} `yaml:"scanner"`

	Chunker struct {
		Window  int `yaml:"window"`
		Overlap int `yaml:"overlap"`
	} `yaml:"chunker"`

	Embedder struct {
		Provider  string `yaml:"provider"`
		Host      string `yaml:"host"`
		Model     string `yaml:"model"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"embedder"`

	Generator struct {
		Host       string `yaml:"host"`
		Model      string `yaml:"model"`
		NumCtx     int    `yaml:"num_ctx"`
		NumPredict int    `yaml:"num_predict"`
	} `yaml:"generator"`

	Compressor struct {
		Endpoint    string `yaml:"endpoint"`
		TimeoutSecs int    `yaml:"timeout_secs"`
	} `yaml:"compressor"`

	Query struct {
		TopK int `yaml:"top_k"`
	} `yaml:"query"`

	Session struct {
		MaxSessions  int `yaml:"max_sessions"`
		IdleTTLHours int `yaml:"idle_ttl_hours"`
	} `yaml:"session"`
}

// CompressorTimeout returns the compressor timeout as a duration.
func (c *Config) CompressorTimeout() time.Duration {
	return time.Duration(c.Compressor.TimeoutSecs) * time.Second
}

// SessionIdleTTL returns the session idle TTL as a duration.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.Session.IdleTTLHours) * time.Hour
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	cfg := &Config{}
	cfg.DataDir = DefaultDataDir
	cfg.Scanner.Extensions = append([]string(nil), scanner.DefaultExtensions...)
	cfg.Chunker.Window = chunker.DefaultWindow
	cfg.Chunker.Overlap = chunker.DefaultOverlap
	cfg.Generator.Model = generator.DefaultModel
	cfg.Generator.NumCtx = generator.DefaultNumCtx
	cfg.Generator.NumPredict = generator.DefaultNumPredict
	cfg.Compressor.Endpoint = compressor.DefaultEndpoint
	cfg.Compressor.TimeoutSecs = int(compressor.DefaultTimeout / time.Second)
	cfg.Query.TopK = query.DefaultTopK
	cfg.Session.MaxSessions = session.DefaultMaxSessions
	cfg.Session.IdleTTLHours = int(session.DefaultIdleTTL / time.Hour)
	return cfg
}

// Load reads the YAML file at path over the defaults. A missing file
// yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Chunker.Window <= 0 {
		return fmt.Errorf("chunker window must be positive, got %d", c.Chunker.Window)
	}
	if c.Chunker.Overlap <= 0 || c.Chunker.Overlap >= c.Chunker.Window {
		return fmt.Errorf("chunker overlap must satisfy 0 < overlap < window, got %d", c.Chunker.Overlap)
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Query.TopK)
	}
	if c.Compressor.TimeoutSecs <= 0 {
		return fmt.Errorf("compressor timeout_secs must be positive, got %d", c.Compressor.TimeoutSecs)
	}
	return nil
}
