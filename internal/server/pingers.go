package server

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Shreyr69/hackrx/internal/rag"
)

// QdrantPinger probes a Qdrant instance using its native HealthCheck RPC.
type QdrantPinger struct {
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	if _, err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// EmbedderPinger probes the embedding backend by embedding a single short
// text. One tiny embedding call per readiness probe is cheap, unlike a
// generation call.
type EmbedderPinger struct {
	embedder rag.Embedder
}

// NewEmbedderPinger constructs an EmbedderPinger for the given embedder.
func NewEmbedderPinger(embedder rag.Embedder) *EmbedderPinger {
	return &EmbedderPinger{embedder: embedder}
}

// Name returns the dependency label used in readiness responses.
func (p *EmbedderPinger) Name() string { return "embedder" }

// Ping embeds a one-word probe text and checks a vector came back.
func (p *EmbedderPinger) Ping(ctx context.Context) error {
	vectors, err := p.embedder.Embed(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embed probe failed: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return fmt.Errorf("embed probe returned no vector")
	}
	return nil
}
