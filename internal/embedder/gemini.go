// Package embedder provides implementations of the rag.Embedder interface for
// converting text into dense vector embeddings. Each implementation talks to
// its backend (Gemini, OpenAI, Ollama) over plain HTTP through the shared
// httpx client, so transport and status failures surface as typed errors that
// the retry layer can classify.
package embedder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Shreyr69/hackrx/internal/httpx"
)

// GeminiEmbedder implements rag.Embedder using the Google Generative Language
// batchEmbedContents endpoint. It is safe for concurrent use.
type GeminiEmbedder struct {
	// baseURL is the API base (default "https://generativelanguage.googleapis.com/v1beta").
	baseURL string
	// apiKey is sent in the x-goog-api-key header.
	apiKey string
	// model is the embedding model name (e.g. "text-embedding-004").
	model string
	client *http.Client
}

// GeminiConfig holds the settings for constructing a GeminiEmbedder.
type GeminiConfig struct {
	// BaseURL overrides the Generative Language API base URL. Empty uses the
	// public endpoint.
	BaseURL string
	// APIKey is the Google AI Studio API key.
	APIKey string
	// Model is the embedding model name (e.g. "text-embedding-004").
	Model string
}

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// NewGeminiEmbedder constructs a GeminiEmbedder from the given config.
func NewGeminiEmbedder(cfg *GeminiConfig) *GeminiEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiEmbedder{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  httpx.NewClient(httpx.WithRequestTimeout(30 * time.Second)),
	}
}

type geminiEmbedRequest struct {
	Requests []geminiEmbedContent `json:"requests"`
}

type geminiEmbedContent struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// geminiMaxBatch is the batchEmbedContents request limit.
const geminiMaxBatch = 100

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice. Batches larger than the
// API limit are split into sequential requests.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += geminiMaxBatch {
		end := start + geminiMaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("gemini embedder: expected %d embeddings, got %d: %w", len(texts), len(out), ErrMalformedResponse)
	}
	return out, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body := geminiEmbedRequest{Requests: make([]geminiEmbedContent, len(texts))}
	for i, text := range texts {
		body.Requests[i] = geminiEmbedContent{
			Model:   "models/" + e.model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		}
	}

	url := e.baseURL + "/models/" + e.model + ":batchEmbedContents"
	headers := map[string]string{"x-goog-api-key": e.apiKey}

	var result geminiEmbedResponse
	if err := httpx.PostJSON(ctx, e.client, url, headers, body, &result); err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embedder: expected %d embeddings, got %d: %w", len(texts), len(result.Embeddings), ErrMalformedResponse)
	}
	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini embedder: empty vector at index %d: %w", i, ErrMalformedResponse)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
