package rag

import (
	"context"
	"testing"
)

func TestNewFlatIndex_Validates(t *testing.T) {
	t.Parallel()
	if _, err := NewFlatIndex(context.Background(), nil); err == nil {
		t.Error("expected error for empty index")
	}
	if _, err := NewFlatIndex(context.Background(), [][]float32{{1, 0}, {1, 0, 0}}); err == nil {
		t.Error("expected error for mixed dimensions")
	}
}

func TestFlatIndex_SearchLimitExceedsSize(t *testing.T) {
	t.Parallel()
	idx, err := NewFlatIndex(context.Background(), [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("NewFlatIndex: %v", err)
	}
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
	if hits[0].Index != 0 {
		t.Errorf("best hit index = %d, want 0", hits[0].Index)
	}
}
