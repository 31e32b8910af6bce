package embedder

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Shreyr69/hackrx/internal/rag"
)

// ErrMissingCredential indicates the resolved backend requires an API key or
// endpoint that is not configured.
var ErrMissingCredential = errors.New("embedder: missing credential")

// ErrMalformedResponse indicates the backend returned a payload that does not
// line up with the request (wrong count, empty vectors, out-of-range index).
var ErrMalformedResponse = errors.New("embedder: malformed response")

// Default embedding models per backend.
const (
	defaultGeminiModel = "text-embedding-004"
	defaultOpenAIModel = "text-embedding-3-small"
	defaultOllamaModel = "nomic-embed-text"

	// defaultGeminiDimensions is the output dimension of text-embedding-004.
	defaultGeminiDimensions = 768
	// defaultOpenAIDimensions is the output dimension of text-embedding-3-small.
	defaultOpenAIDimensions = 1536
	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ; override with EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
)

// DefaultDimensions returns the default embedding vector size for the given
// backend name. Callers that pre-configure a vector store (e.g. a Qdrant
// collection) should use this rather than hardcoding a value.
// EMBEDDING_DIMENSIONS always takes precedence when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	switch backend {
	case "openai":
		return defaultOpenAIDimensions
	case "ollama":
		return defaultOllamaDimensions
	default:
		return defaultGeminiDimensions
	}
}

// NewFromEnv constructs a rag.Embedder using cascading defaults that inherit
// from the chat provider configuration when embedding-specific overrides are
// not set.
//
// Resolution order:
//
//  1. EMBEDDING_PROVIDER, falling back to MODEL_PROVIDER (default: gemini)
//  2. Per-backend credentials inherited from the chat provider's env vars
//  3. EMBEDDING_MODEL overrides the default model for the resolved backend
//  4. EMBEDDING_API_KEY overrides the inherited API key
//  5. EMBEDDING_ENDPOINT overrides the inherited endpoint
//  6. EMBEDDING_DIMENSIONS overrides the default vector size
func NewFromEnv() (rag.Embedder, error) {
	backend := getEnv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = getEnvOrDefault("MODEL_PROVIDER", "gemini")
	}

	switch backend {
	case "gemini":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			apiKey = getEnv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini requires GEMINI_API_KEY, GOOGLE_API_KEY, or EMBEDDING_API_KEY: %w", ErrMissingCredential)
		}
		return NewGeminiEmbedder(&GeminiConfig{
			BaseURL: getEnv("EMBEDDING_ENDPOINT"),
			APIKey:  apiKey,
			Model:   getEnvOrDefault("EMBEDDING_MODEL", defaultGeminiModel),
		}), nil

	case "openai":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("openai requires OPENAI_API_KEY or EMBEDDING_API_KEY: %w", ErrMissingCredential)
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    getEnv("EMBEDDING_ENDPOINT"),
			APIKey:     apiKey,
			Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 0),
		}), nil

	case "ollama":
		host := getEnv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:  host,
			Model: getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel),
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q (valid values: gemini, openai, ollama)", backend)
	}
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
