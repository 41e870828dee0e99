// Package vectorspace holds the vector math shared by clustering:
// cosine similarity, centroids and normalization over fixed-length embeddings.
package vectorspace

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch is returned when vectors of different length are combined
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmptyInput is returned when an aggregate is requested over no vectors
	ErrEmptyInput = errors.New("empty input")
)

// Similarity returns cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector has similarity 0 with everything.
func Similarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / math.Sqrt(normA*normB)

	// Rounding can push parallel vectors a hair past the bounds
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}

	return sim, nil
}

// Centroid returns the element-wise mean of vectors
func Centroid(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d values, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}

	n := float64(len(vectors))
	mean := make([]float32, dim)
	for j, s := range sum {
		mean[j] = float32(s / n)
	}

	return mean, nil
}

// Normalize returns a unit-length copy of v. Zero vectors are returned as zero copies.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return out
	}

	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}

	return out
}
