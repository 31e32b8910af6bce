package answer

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()
	c := NewCache(4, time.Minute)
	if _, ok := c.Get("ctx", "q"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Put("ctx", "q", "a")
	got, ok := c.Get("ctx", "q")
	if !ok || got != "a" {
		t.Fatalf("Get = (%q, %v), want (\"a\", true)", got, ok)
	}
	// Same question under a different context is a distinct key.
	if _, ok := c.Get("other", "q"); ok {
		t.Error("context must be part of the key")
	}
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()
	c := NewCache(2, time.Minute)
	for i := 0; i < 3; i++ {
		c.Put("ctx", fmt.Sprintf("q%d", i), "a")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get("ctx", "q0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("ctx", "q2"); !ok {
		t.Error("newest entry should survive")
	}
}
