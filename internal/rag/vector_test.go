package rag

import (
	"math"
	"testing"
)

// l2 computes the L2 norm of v in float64 for test assertions.
func l2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNormalize_UnitNorm(t *testing.T) {
	t.Parallel()
	got := Normalize([]float32{3, 4})
	if n := l2(got); math.Abs(n-1) > 1e-6 {
		t.Errorf("norm = %v, want 1", n)
	}
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Errorf("Normalize(3,4) = %v, want (0.6, 0.8)", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()
	once := Normalize([]float32{1, 2, 3, 4})
	twice := Normalize(once)
	for i := range once {
		if math.Abs(float64(once[i]-twice[i])) > 1e-6 {
			t.Fatalf("component %d changed on re-normalization: %v vs %v", i, once[i], twice[i])
		}
	}
	if n := l2(twice); math.Abs(n-1) > 1e-6 {
		t.Errorf("re-normalized norm = %v, want 1", n)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	t.Parallel()
	got := Normalize([]float32{0, 0, 0})
	for i, x := range got {
		if x != 0 {
			t.Errorf("component %d = %v, want 0 (no NaN/Inf from zero vector)", i, x)
		}
	}
}

func TestDot_NormalizedIsCosine(t *testing.T) {
	t.Parallel()
	a := Normalize([]float32{1, 0})
	b := Normalize([]float32{1, 1})
	got := float64(dot(a, b))
	want := math.Cos(math.Pi / 4)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("dot = %v, want cos(pi/4) = %v", got, want)
	}
}
