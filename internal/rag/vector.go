package rag

import "math"

// normEpsilon is added to every L2 norm denominator so a zero vector
// normalizes to zero instead of dividing by zero.
const normEpsilon = 1e-12

// Normalize returns v scaled to unit L2 norm. Normalizing an already
// normalized vector is idempotent within floating-point tolerance.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// NormalizeAll normalizes every row of a vector matrix.
func NormalizeAll(vectors [][]float32) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = Normalize(v)
	}
	return out
}

// dot returns the inner product of two equal-length vectors. Over normalized
// vectors this equals cosine similarity.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
