package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name       string
		embedding1 []float64
		embedding2 []float64
		want       float64
	}{
		{
			name:       "identical vectors",
			embedding1: []float64{1.0, 0.0, 0.0},
			embedding2: []float64{1.0, 0.0, 0.0},
			want:       1.0,
		},
		{
			name:       "scaled vectors",
			embedding1: []float64{0.2, 0.4, 0.6},
			embedding2: []float64{1.0, 2.0, 3.0},
			want:       1.0,
		},
		{
			name:       "orthogonal vectors",
			embedding1: []float64{1.0, 0.0},
			embedding2: []float64{0.0, 1.0},
			want:       0.0,
		},
		{
			name:       "opposite vectors",
			embedding1: []float64{1.0, 0.0},
			embedding2: []float64{-1.0, 0.0},
			want:       -1.0,
		},
		{
			name:       "zero vector on the left",
			embedding1: []float64{0.0, 0.0, 0.0},
			embedding2: []float64{1.0, 2.0, 3.0},
			want:       0.0,
		},
		{
			name:       "zero vector on the right",
			embedding1: []float64{1.0, 2.0, 3.0},
			embedding2: []float64{0.0, 0.0, 0.0},
			want:       0.0,
		},
		{
			name:       "different lengths",
			embedding1: []float64{1.0, 0.0},
			embedding2: []float64{1.0, 0.0, 0.0},
			want:       0.0,
		},
		{
			name:       "empty vectors",
			embedding1: []float64{},
			embedding2: []float64{},
			want:       0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.embedding1, tt.embedding2)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v := randomVector(rng, 128)
		assert.Equal(t, 1.0, MatchScore(CosineSimilarity(v, v)))
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		a := randomVector(rng, 128)
		b := randomVector(rng, 128)
		assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
	}
}

func TestFloat64s(t *testing.T) {
	got := Float64s([]float32{0.5, -1, 2})
	assert.Equal(t, []float64{0.5, -1, 2}, got)
	assert.Empty(t, Float64s(nil))
}

func randomVector(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	// keep at least one component away from zero
	v[0] = math.Copysign(math.Abs(v[0])+0.1, v[0])
	return v
}
