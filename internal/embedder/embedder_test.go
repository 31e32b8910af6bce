package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shreyr69/hackrx/internal/httpx"
)

func TestGeminiEmbedder_Embed(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q, want %q", got, "test-key")
		}
		var req geminiEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := geminiEmbedResponse{}
		for i := range req.Requests {
			resp.Embeddings = append(resp.Embeddings, struct {
				Values []float32 `json:"values"`
			}{Values: []float32{float32(i), 1}})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewGeminiEmbedder(&GeminiConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "text-embedding-004"})
	got, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d vectors, want 2", len(got))
	}
	if got[1][0] != 1 {
		t.Errorf("vector order not preserved: %v", got)
	}
}

func TestGeminiEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiEmbedResponse{})
	}))
	defer srv.Close()

	e := NewGeminiEmbedder(&GeminiConfig{BaseURL: srv.URL, APIKey: "k", Model: "text-embedding-004"})
	_, err := e.Embed(context.Background(), []string{"alpha"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestGeminiEmbedder_ServerErrorIsRetryable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewGeminiEmbedder(&GeminiConfig{BaseURL: srv.URL, APIKey: "k", Model: "text-embedding-004"})
	_, err := e.Embed(context.Background(), []string{"alpha"})
	if err == nil {
		t.Fatal("expected error for HTTP 503")
	}
	if !httpx.IsRetryable(err) {
		t.Errorf("HTTP 503 should be classified retryable, got %v", err)
	}
}

func TestOpenAIEmbedder_ReordersByIndex(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"embedding":[2],"index":1},
			{"embedding":[1],"index":0}
		]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "text-embedding-3-small"})
	got, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got[0][0] != 1 || got[1][0] != 2 {
		t.Errorf("vectors not placed by index: %v", got)
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})
	_, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

// countingEmbedder records how many texts reach the backend.
type countingEmbedder struct {
	calls atomic.Int64
	texts atomic.Int64
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	c.texts.Add(int64(len(texts)))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func TestCachingEmbedder_HitsSkipBackend(t *testing.T) {
	t.Parallel()
	backend := &countingEmbedder{}
	c := NewCachingEmbedder(backend, "test-model", time.Minute)

	first, err := c.Embed(context.Background(), []string{"aa", "bbb"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := backend.texts.Load(); got != 2 {
		t.Fatalf("backend saw %d texts, want 2", got)
	}

	// One hit, one new text: only the new text reaches the backend.
	second, err := c.Embed(context.Background(), []string{"aa", "cccc"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := backend.texts.Load(); got != 3 {
		t.Errorf("backend saw %d texts total, want 3", got)
	}
	if second[0][0] != first[0][0] {
		t.Errorf("cached vector differs: %v vs %v", second[0], first[0])
	}
	if second[1][0] != 4 {
		t.Errorf("new vector = %v, want [4]", second[1])
	}
}

func TestCachingEmbedder_AllHitsMakeNoCall(t *testing.T) {
	t.Parallel()
	backend := &countingEmbedder{}
	c := NewCachingEmbedder(backend, "test-model", time.Minute)
	if _, err := c.Embed(context.Background(), []string{"aa"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, err := c.Embed(context.Background(), []string{"aa"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := backend.calls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
}

// shortEmbedder returns fewer vectors than texts, like a backend that
// silently drops entries.
type shortEmbedder struct{}

func (shortEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i := range texts[:len(texts)-1] {
		out = append(out, []float32{float32(i)})
	}
	return out, nil
}

func TestCachingEmbedder_BackendCountMismatch(t *testing.T) {
	t.Parallel()
	c := NewCachingEmbedder(shortEmbedder{}, "test-model", time.Minute)
	_, err := c.Embed(context.Background(), []string{"aa", "bbb"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("got %v, want ErrMalformedResponse", err)
	}
	// Nothing from the truncated batch may be served as a hit later.
	if _, err := c.Embed(context.Background(), []string{"aa", "bbb"}); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("second call got %v, want ErrMalformedResponse", err)
	}
}

func TestNewFromEnv_MissingCredential(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "gemini")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("EMBEDDING_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := NewFromEnv()
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestNewFromEnv_UnknownBackend(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "bogus")
	if _, err := NewFromEnv(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLooksLikeChatModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		model string
		want  bool
	}{
		{"text-embedding-004", false},
		{"nomic-embed-text", false},
		{"gpt-4o", true},
		{"gemini-2.0-flash", true},
		{"llama3.1", true},
	}
	for _, tc := range cases {
		if got := looksLikeChatModel(tc.model); got != tc.want {
			t.Errorf("looksLikeChatModel(%q) = %v, want %v", tc.model, got, tc.want)
		}
	}
}
