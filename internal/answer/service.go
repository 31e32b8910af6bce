// Package answer orchestrates the question answering pipeline: chunk the
// document, embed the chunks once, build a per-request retriever, then answer
// every question concurrently with bounded generation parallelism. Answers
// come back in question order regardless of completion order.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shreyr69/hackrx/internal/logging"
	"github.com/Shreyr69/hackrx/internal/provider"
	"github.com/Shreyr69/hackrx/internal/rag"
	"github.com/Shreyr69/hackrx/internal/retry"
	"github.com/Shreyr69/hackrx/internal/textchunk"
)

// ErrNoChunks indicates the document produced no usable chunks, which aborts
// the whole request.
var ErrNoChunks = errors.New("answer: document produced no chunks")

// Result is the outcome for one question. Exactly one of Answer or Err is
// meaningful: a failed generation never degrades to an empty answer string.
type Result struct {
	// Answer is the generated text, or the not-found message.
	Answer string
	// Err is set when this question failed terminally (query embedding or
	// generation after exhausted retries).
	Err error
}

// Config carries the orchestration knobs. All fields are immutable for the
// lifetime of one request.
type Config struct {
	// Chunk controls document splitting.
	Chunk textchunk.Options
	// TopK is the number of chunks retrieved per question.
	TopK int
	// Threshold is the minimum cosine similarity for a chunk to count as
	// relevant. Questions whose best hit scores below it short-circuit to the
	// not-found answer without a generation call.
	Threshold float32
	// MaxConcurrent bounds in-flight generation calls.
	MaxConcurrent int
	// CallTimeout bounds each external call attempt.
	CallTimeout time.Duration
	// Retry governs backoff around external calls.
	Retry retry.Policy
}

// DefaultConfig returns the standard orchestration settings.
func DefaultConfig() Config {
	return Config{
		Chunk:         textchunk.Options{TargetWords: 100, OverlapWords: 20, MinWords: 10},
		TopK:          8,
		Threshold:     0.3,
		MaxConcurrent: 3,
		CallTimeout:   30 * time.Second,
		Retry:         retry.DefaultPolicy(),
	}
}

// Service answers questions about documents. Construct once and share; the
// answer cache persists across requests while retrievers are per-request.
type Service struct {
	embedder  rag.Embedder
	generator provider.Generator
	build     rag.IndexBuilder
	cache     *Cache
	cfg       Config
}

// NewService constructs a Service. build may be nil to use the exact in-memory
// index; cache may be nil to disable answer caching.
func NewService(embedder rag.Embedder, generator provider.Generator, build rag.IndexBuilder, cache *Cache, cfg Config) (*Service, error) {
	if embedder == nil {
		return nil, fmt.Errorf("answer: embedder must not be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("answer: generator must not be nil")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("answer: TopK must be positive, got %d", cfg.TopK)
	}
	if cfg.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("answer: MaxConcurrent must be positive, got %d", cfg.MaxConcurrent)
	}
	return &Service{
		embedder:  embedder,
		generator: generator,
		build:     build,
		cache:     cache,
		cfg:       cfg,
	}, nil
}

// AnswerQuestions answers every question against the document text. The
// returned slice is parallel to questions. A request-level failure (no chunks,
// chunk embedding) returns a nil slice and an error; per-question failures are
// isolated in their Result and never abort sibling questions.
func (s *Service) AnswerQuestions(ctx context.Context, documentText string, questions []string) ([]Result, error) {
	log := logging.FromContext(ctx)

	chunks := textchunk.Split(documentText, s.cfg.Chunk)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	log.Debug("document chunked", slog.Int("chunks", len(chunks)))

	if len(questions) == 0 {
		return []Result{}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("answer: embed chunks: %w", err)
	}

	retriever, err := rag.NewRetriever(ctx, embeddings, chunks, s.build)
	if err != nil {
		return nil, fmt.Errorf("answer: build retriever: %w", err)
	}
	defer retriever.Close()

	// Generation parallelism is bounded; question fan-out is not. Results are
	// written by index so completion order never reorders answers.
	results := make([]Result, len(questions))
	sem := make(chan struct{}, s.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for i, question := range questions {
		wg.Add(1)
		go func(i int, question string) {
			defer wg.Done()
			results[i] = s.answerOne(ctx, retriever, sem, question)
		}(i, question)
	}
	wg.Wait()

	return results, nil
}

// answerOne runs the retrieval and generation flow for a single question.
func (s *Service) answerOne(ctx context.Context, retriever *rag.Retriever, sem chan struct{}, question string) Result {
	log := logging.FromContext(ctx)

	queryVecs, err := s.embedTexts(ctx, []string{question})
	if err != nil {
		return Result{Err: fmt.Errorf("answer: embed question: %w", err)}
	}

	hits, err := retriever.Search(ctx, queryVecs[0], s.cfg.TopK, s.cfg.Threshold)
	if err != nil {
		return Result{Err: fmt.Errorf("answer: retrieve: %w", err)}
	}

	// The retriever falls back to best-effort results below the threshold so
	// callers always see scores. The cost decision is made here: no chunk
	// clears the threshold, no generation call.
	if len(hits) == 0 || hits[0].Score < s.cfg.Threshold {
		log.Debug("no relevant chunks above threshold", slog.String("question", question))
		return Result{Answer: NotFound}
	}

	contextText := buildContext(hits)
	answer, err := s.generate(ctx, sem, contextText, question)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Answer: answer}
}

// generate invokes the generation backend through the cache and retry layers.
// A cache hit returns immediately without taking a semaphore slot.
func (s *Service) generate(ctx context.Context, sem chan struct{}, contextText, question string) (string, error) {
	if s.cache != nil {
		if answer, ok := s.cache.Get(contextText, question); ok {
			return answer, nil
		}
	}

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("answer: waiting for generation slot: %w", ctx.Err())
	}
	defer func() { <-sem }()

	prompt := buildPrompt(contextText, question)
	var answer string
	err := s.cfg.Retry.Do(ctx, func() error {
		callCtx, cancel := s.callContext(ctx)
		defer cancel()
		var genErr error
		answer, genErr = s.generator.Generate(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("answer: generation failed: %w", err)
	}

	if s.cache != nil {
		s.cache.Put(contextText, question, answer)
	}
	return answer, nil
}

// embedTexts calls the embedding backend under the retry policy and per-call
// timeout.
func (s *Service) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := s.cfg.Retry.Do(ctx, func() error {
		callCtx, cancel := s.callContext(ctx)
		defer cancel()
		var embErr error
		vectors, embErr = s.embedder.Embed(callCtx, texts)
		return embErr
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("answer: embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.CallTimeout)
}
