package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/Shreyr69/hackrx/internal/textchunk"
)

// Retriever ranks document chunks by cosine similarity to a query embedding.
// It is constructed once per request from the chunk embeddings and their
// chunks (embeddings[i] is the vector for chunks[i]) and is read-only
// afterwards. The chunk set and its retriever are never shared across
// requests.
type Retriever struct {
	// index is the similarity backend (flat scan or Qdrant).
	index Index
	// chunks are the document chunks, positionally parallel to the vectors
	// the index was built from.
	chunks []textchunk.Chunk
}

// NewRetriever normalizes the embedding matrix, builds the similarity index
// with build (FlatIndex when nil), and returns the ready Retriever. The
// matrix must be non-empty, dimensionally uniform, and row-parallel to
// chunks.
func NewRetriever(ctx context.Context, embeddings [][]float32, chunks []textchunk.Chunk, build IndexBuilder) (*Retriever, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("rag: no chunks to index")
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("rag: %d embeddings for %d chunks", len(embeddings), len(chunks))
	}
	if build == nil {
		build = NewFlatIndex
	}

	index, err := build(ctx, NormalizeAll(embeddings))
	if err != nil {
		return nil, err
	}

	return &Retriever{index: index, chunks: chunks}, nil
}

// Search returns up to topK chunks ranked by descending cosine similarity to
// query, ties broken by ascending chunk id.
//
// Candidates below threshold are discarded, but when the threshold would
// leave nothing, the raw top-k is returned instead: a threshold should
// improve relevance, never suppress every result. Scores are always exposed
// so the caller can make its own relevance decision (the answer pipeline
// re-applies the threshold and short-circuits to a not-found answer when no
// chunk clears it).
func (r *Retriever) Search(ctx context.Context, query []float32, topK int, threshold float32) ([]ScoredChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("rag: topK must be positive, got %d", topK)
	}

	// Fetch a candidate superset so threshold filtering does not starve the
	// final ranked list.
	limit := 2 * topK
	if limit > len(r.chunks) {
		limit = len(r.chunks)
	}

	hits, err := r.index.Search(ctx, Normalize(query), limit)
	if err != nil {
		return nil, err
	}

	kept := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if h.Score >= threshold {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		kept = hits
	}

	sort.Slice(kept, func(a, b int) bool {
		if kept[a].Score != kept[b].Score {
			return kept[a].Score > kept[b].Score
		}
		return kept[a].Index < kept[b].Index
	})
	if topK < len(kept) {
		kept = kept[:topK]
	}

	out := make([]ScoredChunk, 0, len(kept))
	for _, h := range kept {
		if h.Index < 0 || h.Index >= len(r.chunks) {
			return nil, fmt.Errorf("rag: index returned out-of-range candidate %d", h.Index)
		}
		out = append(out, ScoredChunk{Chunk: r.chunks[h.Index], Score: h.Score})
	}
	return out, nil
}

// Close releases the underlying index.
func (r *Retriever) Close() error {
	return r.index.Close()
}
