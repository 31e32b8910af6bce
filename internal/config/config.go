// Package config provides YAML-based configuration for hackrx.
// Configuration is loaded with a layered precedence: defaults, then the YAML
// file, then env vars. Environment variables always win, so env-only
// deployments are unaffected by the presence of a file.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. HACKRX_CONFIG environment variable
//  3. ~/.hackrx/config.yaml
//  4. ./hackrx.yaml
//
// If no file is found the system runs entirely from env vars.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming.
type Config struct {
	// Model configures the LLM generation provider.
	Model ModelConfig `yaml:"model"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Qdrant configures the optional Qdrant vector index backend.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Pipeline configures chunking, retrieval, and orchestration.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// History configures run history persistence.
	History HistoryConfig `yaml:"history"`

	// Tracing configures Langfuse tracing integration.
	Tracing TracingConfig `yaml:"tracing"`
}

// ModelConfig holds LLM generation settings.
type ModelConfig struct {
	// Provider selects the backend: gemini, openai, ollama.
	Provider string `yaml:"provider"`

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls response randomness (0.0 to 1.0).
	Temperature float32 `yaml:"temperature"`

	// Gemini holds Google Gemini-specific settings.
	Gemini GeminiConfig `yaml:"gemini"`

	// OpenAI holds OpenAI-specific settings.
	OpenAI OpenAIConfig `yaml:"openai"`

	// Ollama holds Ollama-specific settings.
	Ollama OllamaConfig `yaml:"ollama"`
}

// GeminiConfig holds Google Gemini provider settings.
type GeminiConfig struct {
	// APIKey is the Google API key. Prefer env var GEMINI_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the Gemini model name.
	Model string `yaml:"model"`
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Prefer env var OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the OpenAI model name.
	Model string `yaml:"model"`
}

// OllamaConfig holds Ollama provider settings.
type OllamaConfig struct {
	// Host is the Ollama API endpoint.
	Host string `yaml:"host"`
	// Model is the Ollama model name.
	Model string `yaml:"model"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend (gemini, openai, ollama).
	Provider string `yaml:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model"`
	// Dimensions overrides the embedding vector size.
	Dimensions int `yaml:"dimensions"`
	// APIKey is the embedding API key. Prefer env var EMBEDDING_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the embedding API endpoint.
	Endpoint string `yaml:"endpoint"`
	// CacheTTL is the embedding cache entry lifetime (e.g. "1h").
	CacheTTL string `yaml:"cache_ttl"`
}

// QdrantConfig holds Qdrant vector index settings. When Host is empty the
// pipeline uses the exact in-memory index.
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host"`
	// Port is the Qdrant gRPC port.
	Port int `yaml:"port"`
	// APIKey is the Qdrant API key. Prefer env var QDRANT_API_KEY.
	APIKey string `yaml:"api_key"`
	// TLS enables TLS for the Qdrant connection.
	TLS bool `yaml:"tls"`
}

// PipelineConfig holds chunking, retrieval, and orchestration settings.
type PipelineConfig struct {
	// ChunkWords is the target chunk size in words.
	ChunkWords int `yaml:"chunk_words"`
	// ChunkOverlap is the overlap between consecutive chunks in words.
	ChunkOverlap int `yaml:"chunk_overlap"`
	// ChunkMinWords drops chunks below this many words.
	ChunkMinWords int `yaml:"chunk_min_words"`
	// TopK is the number of chunks retrieved per question.
	TopK int `yaml:"top_k"`
	// Threshold is the minimum similarity for a chunk to count as relevant.
	Threshold float32 `yaml:"threshold"`
	// MaxConcurrent bounds in-flight generation calls.
	MaxConcurrent int `yaml:"max_concurrent"`
	// CallTimeout bounds each external call attempt (e.g. "30s").
	CallTimeout string `yaml:"call_timeout"`
	// RetryAttempts is the maximum attempts per external call.
	RetryAttempts int `yaml:"retry_attempts"`
	// RetryDelay is the initial backoff delay (e.g. "1s").
	RetryDelay string `yaml:"retry_delay"`
	// RetryMaxDelay caps the backoff delay (e.g. "6s").
	RetryMaxDelay string `yaml:"retry_max_delay"`
	// CacheCapacity is the answer cache entry limit.
	CacheCapacity int `yaml:"cache_capacity"`
	// CacheTTL is the answer cache entry lifetime (e.g. "1h").
	CacheTTL string `yaml:"cache_ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host"`
	// Port is the TCP port.
	Port int `yaml:"port"`
	// APIKey is the Bearer token for API authentication. Prefer env var HACKRX_API_KEY.
	APIKey string `yaml:"api_key"`
	// RateLimit is the per-IP sustained request rate on the run endpoint.
	RateLimit float32 `yaml:"rate_limit"`
	// RateBurst is the per-IP burst size on the run endpoint.
	RateBurst int `yaml:"rate_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	// DBPath is the SQLite database path. Set to "disabled" to disable.
	DBPath string `yaml:"db_path"`
}

// TracingConfig holds Langfuse tracing settings.
type TracingConfig struct {
	// PublicKey is the Langfuse public key. Prefer env var LANGFUSE_PUBLIC_KEY.
	PublicKey string `yaml:"public_key"`
	// SecretKey is the Langfuse secret key. Prefer env var LANGFUSE_SECRET_KEY.
	SecretKey string `yaml:"secret_key"`
	// Host is the Langfuse API host.
	Host string `yaml:"host"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"MODEL_PROVIDER", func(c *Config) string { return c.Model.Provider }},
	{"MODEL_MAX_TOKENS", func(c *Config) string { return intStr(c.Model.MaxTokens) }},
	{"MODEL_TEMPERATURE", func(c *Config) string { return float32Str(c.Model.Temperature) }},
	{"GEMINI_API_KEY", func(c *Config) string { return c.Model.Gemini.APIKey }},
	{"GEMINI_MODEL", func(c *Config) string { return c.Model.Gemini.Model }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.Model.OpenAI.APIKey }},
	{"OPENAI_MODEL", func(c *Config) string { return c.Model.OpenAI.Model }},
	{"OLLAMA_HOST", func(c *Config) string { return c.Model.Ollama.Host }},
	{"OLLAMA_MODEL", func(c *Config) string { return c.Model.Ollama.Model }},
	{"EMBEDDING_PROVIDER", func(c *Config) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"EMBEDDING_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_API_KEY", func(c *Config) string { return c.Embedding.APIKey }},
	{"EMBEDDING_ENDPOINT", func(c *Config) string { return c.Embedding.Endpoint }},
	{"EMBEDDING_CACHE_TTL", func(c *Config) string { return c.Embedding.CacheTTL }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"HACKRX_CHUNK_WORDS", func(c *Config) string { return intStr(c.Pipeline.ChunkWords) }},
	{"HACKRX_CHUNK_OVERLAP", func(c *Config) string { return intStr(c.Pipeline.ChunkOverlap) }},
	{"HACKRX_CHUNK_MIN_WORDS", func(c *Config) string { return intStr(c.Pipeline.ChunkMinWords) }},
	{"HACKRX_TOP_K", func(c *Config) string { return intStr(c.Pipeline.TopK) }},
	{"HACKRX_THRESHOLD", func(c *Config) string { return float32Str(c.Pipeline.Threshold) }},
	{"HACKRX_MAX_CONCURRENT", func(c *Config) string { return intStr(c.Pipeline.MaxConcurrent) }},
	{"HACKRX_CALL_TIMEOUT", func(c *Config) string { return c.Pipeline.CallTimeout }},
	{"HACKRX_RETRY_ATTEMPTS", func(c *Config) string { return intStr(c.Pipeline.RetryAttempts) }},
	{"HACKRX_RETRY_DELAY", func(c *Config) string { return c.Pipeline.RetryDelay }},
	{"HACKRX_RETRY_MAX_DELAY", func(c *Config) string { return c.Pipeline.RetryMaxDelay }},
	{"HACKRX_CACHE_CAPACITY", func(c *Config) string { return intStr(c.Pipeline.CacheCapacity) }},
	{"HACKRX_CACHE_TTL", func(c *Config) string { return c.Pipeline.CacheTTL }},
	{"HACKRX_HOST", func(c *Config) string { return c.Server.Host }},
	{"HACKRX_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"HACKRX_API_KEY", func(c *Config) string { return c.Server.APIKey }},
	{"HACKRX_RATE_LIMIT", func(c *Config) string { return float32Str(c.Server.RateLimit) }},
	{"HACKRX_RATE_BURST", func(c *Config) string { return intStr(c.Server.RateBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"HACKRX_HISTORY_DB", func(c *Config) string { return c.History.DBPath }},
	{"LANGFUSE_PUBLIC_KEY", func(c *Config) string { return c.Tracing.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *Config) string { return c.Tracing.SecretKey }},
	{"LANGFUSE_HOST", func(c *Config) string { return c.Tracing.Host }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" || yamlVal == "0" || yamlVal == "false" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set, do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("HACKRX_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".hackrx", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("hackrx.yaml"); err == nil {
		return "hackrx.yaml"
	}

	return ""
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// float32Str converts a float32 to string, returning "" for zero values.
func float32Str(v float32) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// boolStr converts a bool to string, returning "" for false.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
