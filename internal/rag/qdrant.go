package rag

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for the optional Qdrant backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string
	// Port is the Qdrant gRPC port (default: 6334).
	Port int
	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string
	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
	// CollectionPrefix prefixes the per-request collection names
	// (default: "hackrx").
	CollectionPrefix string
}

// NewQdrantClient creates a Qdrant gRPC client from cfg.
func NewQdrantClient(cfg *QdrantConfig) (*qdrant.Client, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("rag: failed to create qdrant client: %w", err)
	}
	return client, nil
}

// NewQdrantBuilder returns an IndexBuilder backed by client. Each build
// creates a throwaway collection holding only this request's chunk vectors;
// Close drops it. Distance_Dot over pre-normalized vectors keeps the ranking
// metric identical to FlatIndex (inner product == cosine similarity), so the
// two backends agree up to floating-point tolerance.
func NewQdrantBuilder(client *qdrant.Client, cfg *QdrantConfig) IndexBuilder {
	prefix := cfg.CollectionPrefix
	if prefix == "" {
		prefix = "hackrx"
	}

	return func(ctx context.Context, vectors [][]float32) (Index, error) {
		if len(vectors) == 0 {
			return nil, fmt.Errorf("rag: cannot index an empty vector matrix")
		}
		dim := len(vectors[0])

		collection := fmt.Sprintf("%s-%s", prefix, randomSuffix())
		err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: qdrant.Distance_Dot,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("rag: failed to create collection %q: %w", collection, err)
		}

		points := make([]*qdrant.PointStruct, len(vectors))
		for i, v := range vectors {
			if len(v) != dim {
				return nil, fmt.Errorf("rag: embedding dimension mismatch at row %d: got %d, want %d", i, len(v), dim)
			}
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(uint64(i)),
				Vectors: qdrant.NewVectors(v...),
			}
		}

		if _, err := client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		}); err != nil {
			// Best effort cleanup; the collection is useless without points.
			_ = client.DeleteCollection(context.WithoutCancel(ctx), collection)
			return nil, fmt.Errorf("rag: upsert into %q failed: %w", collection, err)
		}

		return &qdrantIndex{client: client, collection: collection, dim: dim}, nil
	}
}

// qdrantIndex is the Qdrant-backed Index over one ephemeral collection.
type qdrantIndex struct {
	client     *qdrant.Client
	collection string
	dim        int
}

// Search runs a dot-product query against the collection.
func (q *qdrantIndex) Search(ctx context.Context, query []float32, limit int) ([]Hit, error) {
	if len(query) != q.dim {
		return nil, fmt.Errorf("rag: query dimension %d does not match index dimension %d", len(query), q.dim)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("rag: search limit must be positive, got %d", limit)
	}

	lim := uint64(limit)
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &lim,
	})
	if err != nil {
		return nil, fmt.Errorf("rag: qdrant query failed: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{Index: int(r.Id.GetNum()), Score: r.Score})
	}
	return hits, nil
}

// Close drops the ephemeral collection. The index holds nothing else.
func (q *qdrantIndex) Close() error {
	if err := q.client.DeleteCollection(context.Background(), q.collection); err != nil {
		return fmt.Errorf("rag: failed to drop collection %q: %w", q.collection, err)
	}
	return nil
}

// randomSuffix returns an 8-byte random hex string for collection names.
func randomSuffix() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b)
}
