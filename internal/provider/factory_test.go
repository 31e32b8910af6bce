package provider

import (
	"context"
	"strings"
	"testing"
)

func TestNew_UnknownBackend(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), &Config{Backend: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the backend: %v", err)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Parallel()
	for _, backend := range []Backend{BackendGemini, BackendOpenAI} {
		if _, err := New(context.Background(), &Config{Backend: backend, Model: "m"}); err == nil {
			t.Errorf("backend %s: expected error without API key", backend)
		}
	}
}

func TestNewFromEnv_ResolvesGeminiKeyFallback(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error when neither GEMINI_API_KEY nor GOOGLE_API_KEY is set")
	}
}
