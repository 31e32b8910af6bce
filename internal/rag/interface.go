// Package rag implements the per-request vector retrieval layer: embedding
// normalisation, an inner-product similarity index with interchangeable
// backends, and the ranked, threshold-filtered search used to select document
// chunks for a query. A Retriever is built once per request from the chunk
// embeddings and is read-only after construction, so it is safe to search
// from many goroutines concurrently.
package rag

import (
	"context"

	"github.com/Shreyr69/hackrx/internal/textchunk"
)

// ScoredChunk pairs a chunk with its cosine similarity to the query.
type ScoredChunk struct {
	// Chunk is the retrieved document passage.
	Chunk textchunk.Chunk
	// Score is the cosine similarity in [-1, 1] (in practice [0, 1] for
	// typical text embeddings).
	Score float32
}

// Hit is one candidate returned by an Index backend: the position of the
// vector in the order it was indexed, and its inner-product score.
type Hit struct {
	// Index is the vector's position in the construction-time matrix.
	Index int
	// Score is the inner product with the (normalized) query vector.
	Score float32
}

// Index is an inner-product similarity index over a fixed set of normalized
// vectors. Implementations are built once and read-only afterwards; Search
// must be safe for concurrent use. Both backends (exact flat scan and
// Qdrant) must rank identically up to floating-point tolerance so results
// are backend-independent.
type Index interface {
	// Search returns up to limit candidates ranked by descending inner
	// product with the normalized query vector.
	Search(ctx context.Context, query []float32, limit int) ([]Hit, error)

	// Close releases any resources held by the index (remote collections,
	// open connections). Safe to call on an in-memory index.
	Close() error
}

// IndexBuilder constructs an Index over an already-normalized vector matrix.
// The answer pipeline selects the builder (flat or Qdrant) from configuration.
type IndexBuilder func(ctx context.Context, vectors [][]float32) (Index, error)

// Embedder converts text into dense vector embeddings. Implementations must
// be safe to call from multiple goroutines and must return one vector per
// input text, preserving input order, all of identical dimensionality.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
