package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// systemInstruction frames every generation request. The answering rules
// themselves live in the rendered prompt.
const systemInstruction = "You are a precise assistant that answers questions strictly from the provided document excerpts."

// NewFromEnv constructs a Generator by reading provider configuration from
// environment variables. MODEL_PROVIDER selects the backend; each provider
// uses its own native credential env vars.
//
// Environment variables:
//
//	MODEL_PROVIDER   = gemini | openai | ollama (default: gemini)
//
//	Gemini:  GEMINI_API_KEY or GOOGLE_API_KEY, GEMINI_MODEL (default: gemini-2.0-flash)
//	OpenAI:  OPENAI_API_KEY, OPENAI_MODEL (default: gpt-4o)
//	Ollama:  OLLAMA_HOST (default: http://localhost:11434), OLLAMA_MODEL (default: llama3)
//
//	Shared:  MODEL_MAX_TOKENS (default: 1024), MODEL_TEMPERATURE (default: 0.2)
func NewFromEnv(ctx context.Context) (Generator, error) {
	cfg := &Config{
		Backend:     Backend(getEnvOrDefault("MODEL_PROVIDER", string(BackendGemini))),
		MaxTokens:   getEnvInt("MODEL_MAX_TOKENS", 1024),
		Temperature: getEnvFloat32("MODEL_TEMPERATURE", 0.2),
	}

	switch cfg.Backend {
	case BackendGemini:
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash")
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case BackendOpenAI:
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o")
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case BackendOllama:
		cfg.Model = getEnvOrDefault("OLLAMA_MODEL", "llama3")
		cfg.BaseURL = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
	}

	return New(ctx, cfg)
}

// New constructs a Generator from an explicit Config, delegating to the
// appropriate backend constructor.
func New(ctx context.Context, cfg *Config) (Generator, error) {
	var (
		cm  model.ToolCallingChatModel
		err error
	)
	switch cfg.Backend {
	case BackendGemini:
		cm, err = newGemini(ctx, cfg)
	case BackendOpenAI:
		cm, err = newOpenAI(ctx, cfg)
	case BackendOllama:
		cm, err = newOllama(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q (valid values: gemini, openai, ollama)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &chatGenerator{model: cm}, nil
}

// chatGenerator adapts an eino chat model to the Generator interface.
type chatGenerator struct {
	model model.ToolCallingChatModel
}

// Generate sends the prompt as a single-turn chat exchange and returns the
// model's reply text with surrounding whitespace trimmed.
func (g *chatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemInstruction),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("provider: generate: %w", err)
	}
	return strings.TrimSpace(msg.Content), nil
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

// getEnvFloat32 returns the float32 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
