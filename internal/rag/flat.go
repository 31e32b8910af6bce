package rag

import (
	"context"
	"fmt"
	"sort"
)

// FlatIndex is the exact brute-force Index backend: an inner-product scan
// over the full vector matrix. It is the reference implementation the
// approximate backends are measured against, and the default when no Qdrant
// host is configured. Read-only after construction.
type FlatIndex struct {
	// vectors is the normalized embedding matrix, one row per chunk.
	vectors [][]float32
	// dim is the uniform dimensionality of every row.
	dim int
}

// NewFlatIndex builds a FlatIndex over normalized vectors. It validates that
// the matrix is non-empty and dimensionally uniform; mixed dimensionality
// means the caller embedded chunks against inconsistent models.
func NewFlatIndex(_ context.Context, vectors [][]float32) (Index, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("rag: cannot index an empty vector matrix")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("rag: zero-dimensional embedding at row 0")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("rag: embedding dimension mismatch at row %d: got %d, want %d", i, len(v), dim)
		}
	}
	return &FlatIndex{vectors: vectors, dim: dim}, nil
}

// Search scans all vectors and returns the top limit candidates by inner
// product, ties broken by ascending row index for determinism.
func (f *FlatIndex) Search(_ context.Context, query []float32, limit int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("rag: query dimension %d does not match index dimension %d", len(query), f.dim)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("rag: search limit must be positive, got %d", limit)
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Index: i, Score: dot(query, v)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].Index < hits[b].Index
	})

	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close is a no-op for the in-memory backend.
func (f *FlatIndex) Close() error { return nil }
