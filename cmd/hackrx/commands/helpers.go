package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Shreyr69/hackrx/internal/answer"
	"github.com/Shreyr69/hackrx/internal/embedder"
	"github.com/Shreyr69/hackrx/internal/provider"
	"github.com/Shreyr69/hackrx/internal/rag"
	"github.com/Shreyr69/hackrx/internal/server"
	"github.com/Shreyr69/hackrx/internal/store"
)

// buildPipeline wires every dependency of the question-answering pipeline
// from the environment: embedder (with caching), generation model, optional
// Qdrant index backend, answer cache, and run history store. The returned
// cleanup function closes everything that was opened and must be called
// even when the pipeline is discarded early.
func buildPipeline(ctx context.Context, log *slog.Logger) (*answer.Pipeline, []server.Pinger, func(), error) {
	cleanup := func() {}

	if err := embedder.Validate(log); err != nil {
		return nil, nil, cleanup, fmt.Errorf("embedder configuration: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, cleanup, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	// Cache embeddings keyed by model so repeated documents and questions
	// skip the backend entirely.
	backend := os.Getenv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = os.Getenv("MODEL_PROVIDER")
	}
	modelKey := backend + "/" + os.Getenv("EMBEDDING_MODEL")
	cacheTTL := 30 * time.Minute
	if v := os.Getenv("EMBEDDING_CACHE_TTL"); v != "" {
		if d, perr := time.ParseDuration(v); perr == nil && d > 0 {
			cacheTTL = d
		}
	}
	cachedEmb := embedder.NewCachingEmbedder(emb, modelKey, cacheTTL)

	gen, err := provider.NewFromEnv(ctx)
	if err != nil {
		return nil, nil, cleanup, fmt.Errorf("failed to initialise model provider: %w", err)
	}

	pingers := []server.Pinger{server.NewEmbedderPinger(cachedEmb)}

	// The in-memory flat index is the default. QDRANT_HOST switches the
	// vector search to an external Qdrant instance.
	var build rag.IndexBuilder
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		qcfg := &rag.QdrantConfig{
			Host:   host,
			APIKey: os.Getenv("QDRANT_API_KEY"),
			UseTLS: os.Getenv("QDRANT_TLS") == "true",
		}
		if p := os.Getenv("QDRANT_PORT"); p != "" {
			if port, perr := strconv.Atoi(p); perr == nil {
				qcfg.Port = port
			}
		}
		client, qerr := rag.NewQdrantClient(qcfg)
		if qerr != nil {
			return nil, nil, cleanup, fmt.Errorf("failed to connect to qdrant: %w", qerr)
		}
		build = rag.NewQdrantBuilder(client, qcfg)
		pingers = append(pingers, server.NewQdrantPinger(client))
		log.Info("vector index: qdrant", slog.String("host", qcfg.Host))
	} else {
		log.Info("vector index: in-memory")
	}

	svc, err := answer.NewService(cachedEmb, gen, build, answer.CacheFromEnv(), answer.ConfigFromEnv())
	if err != nil {
		return nil, nil, cleanup, err
	}

	history, closeHistory := openHistory(ctx, log)
	cleanup = closeHistory

	return answer.NewPipeline(svc, history), pingers, cleanup, nil
}

// openHistory opens the run history store. HACKRX_HISTORY_DB overrides the
// default path (~/.hackrx/history.db); set it to "disabled" to turn history
// off. Failures downgrade to a warning so the pipeline still runs.
func openHistory(ctx context.Context, log *slog.Logger) (store.HistoryStore, func()) {
	dbPath := os.Getenv("HACKRX_HISTORY_DB")
	if dbPath == "disabled" {
		log.Info("history: disabled via HACKRX_HISTORY_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}

	hs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.InfoContext(ctx, "history: store opened", slog.String("path", dbPath))
	return hs, func() { _ = hs.Close() }
}
