package vectorspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "scaled copy", a: []float32{1, 2, 3}, b: []float32{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 1}, b: []float32{-1, -1}, want: -1},
		{name: "zero vector", a: []float32{0, 0, 0}, b: []float32{1, 2, 3}, want: 0},
		{name: "both empty", a: []float32{}, b: []float32{}, want: 0},
		{name: "forty five degrees", a: []float32{1, 0}, b: []float32{1, 1}, want: 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Similarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, -1.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestSimilarity_IdenticalIsExactlyOne(t *testing.T) {
	v := []float32{0.12, -0.7, 0.33, 0.051}
	got, err := Similarity(v, v)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestSimilarity_DimensionMismatch(t *testing.T) {
	_, err := Similarity([]float32{1, 2}, []float32{1, 2, 3})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCentroid(t *testing.T) {
	got, err := Centroid([][]float32{{1, 0, 2}, {3, 4, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2, 1}, got)

	// mean of identical vectors reproduces the vector bit for bit
	v := []float32{0.1, 0.2, 0.3}
	got, err = Centroid([][]float32{v, v, v})
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestCentroid_Errors(t *testing.T) {
	_, err := Centroid(nil)
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Centroid([][]float32{{1, 2}, {1}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, got[0], 1e-6)
	assert.InDelta(t, 0.8, got[1], 1e-6)

	zero := Normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)

	src := []float32{1, 1}
	_ = Normalize(src)
	assert.Equal(t, []float32{1, 1}, src, "input must not be modified")
}
