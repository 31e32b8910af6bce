package answer

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shreyr69/hackrx/internal/ingest"
	"github.com/Shreyr69/hackrx/internal/logging"
	"github.com/Shreyr69/hackrx/internal/store"
)

// Pipeline runs the full document flow: ingest the document at a URL, answer
// every question, and record each outcome in the run history.
type Pipeline struct {
	svc     *Service
	history store.HistoryStore
}

// NewPipeline constructs a Pipeline. history may be nil to skip run recording.
func NewPipeline(svc *Service, history store.HistoryStore) *Pipeline {
	return &Pipeline{svc: svc, history: history}
}

// Run ingests the document at documentURL and answers questions against it.
// History recording is best effort; a store failure is logged and never fails
// the run.
func (p *Pipeline) Run(ctx context.Context, documentURL string, questions []string) ([]Result, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	text, err := ingest.Ingest(ctx, documentURL)
	if err != nil {
		return nil, err
	}
	log.Debug("document ingested",
		slog.String("url", documentURL),
		slog.Int("bytes", len(text)),
		slog.Duration("took", time.Since(start)),
	)

	answerStart := time.Now()
	results, err := p.svc.AnswerQuestions(ctx, text, questions)
	if err != nil {
		return nil, err
	}
	p.record(ctx, documentURL, questions, results, time.Since(answerStart))
	return results, nil
}

// record appends one history row per question.
func (p *Pipeline) record(ctx context.Context, documentURL string, questions []string, results []Result, elapsed time.Duration) {
	if p.history == nil {
		return
	}
	log := logging.FromContext(ctx)
	for i, r := range results {
		rec := store.Record{
			DocumentURL: documentURL,
			Question:    questions[i],
			Duration:    elapsed,
		}
		switch {
		case r.Err != nil:
			rec.Status = store.StatusError
			rec.Answer = r.Err.Error()
		case r.Answer == NotFound:
			rec.Status = store.StatusNotFound
			rec.Answer = r.Answer
		default:
			rec.Status = store.StatusAnswered
			rec.Answer = r.Answer
		}
		if err := p.history.Append(ctx, rec); err != nil {
			log.Warn("history append failed", slog.Any("error", err))
			return
		}
	}
}
