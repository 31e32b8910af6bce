// Package provider selects and constructs the LLM generation backend at
// runtime. Supported backends: Google Gemini, OpenAI, Ollama. The concrete
// chat models come from the eino ecosystem; callers see only the small
// Generator interface so tests can substitute fakes.
package provider

import "context"

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
)

// Generator produces a completion for a fully rendered prompt.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate returns the model's answer text for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds provider-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name to use (e.g. "gemini-2.0-flash", "gpt-4o", "llama3").
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama).
	BaseURL string

	// APIKey is the authentication credential for the selected provider.
	// Unused for Ollama.
	APIKey string

	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int

	// Temperature controls response randomness (0.0 to 1.0).
	Temperature float32
}
