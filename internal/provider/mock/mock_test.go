package mock

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/scoring"
)

func filled(w, h int, c color.Gray) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = c.Y
	}
	return img
}

func checkerboard(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestProvider_DetectFaces(t *testing.T) {
	p := New()
	ctx := context.Background()

	tests := []struct {
		name      string
		image     image.Image
		wantFaces int
	}{
		{
			name:      "valid image",
			image:     checkerboard(64, 48),
			wantFaces: 1,
		},
		{
			name:      "image too small",
			image:     checkerboard(8, 8),
			wantFaces: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, err := p.DetectFaces(ctx, tt.image)
			if err != nil {
				t.Fatalf("DetectFaces() error = %v", err)
			}
			if len(faces) != tt.wantFaces {
				t.Errorf("DetectFaces() got %d faces, want %d", len(faces), tt.wantFaces)
			}
		})
	}
}

func TestProvider_EmbeddingDeterministic(t *testing.T) {
	p := New()
	ctx := context.Background()

	a, err := p.DetectFaces(ctx, checkerboard(32, 32))
	if err != nil {
		t.Fatalf("DetectFaces() error = %v", err)
	}
	b, err := p.DetectFaces(ctx, checkerboard(32, 32))
	if err != nil {
		t.Fatalf("DetectFaces() error = %v", err)
	}

	if len(a[0].Embedding) != embeddingDimension {
		t.Fatalf("embedding dimension = %d, want %d", len(a[0].Embedding), embeddingDimension)
	}
	if got := scoring.MatchScore(scoring.CosineSimilarity(a[0].Embedding, b[0].Embedding)); got != 1 {
		t.Errorf("same image score = %v, want 1", got)
	}

	c, _ := p.DetectFaces(ctx, filled(32, 32, color.Gray{Y: 10}))
	if got := scoring.CosineSimilarity(a[0].Embedding, c[0].Embedding); got >= 0.9999 {
		t.Errorf("different images scored %v", got)
	}
}

func TestProvider_Predict(t *testing.T) {
	p := New()

	got, err := p.Predict(context.Background(), filled(10, 10, color.Gray{Y: 255}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Predict() white = %v, want 1", got)
	}

	got, _ = p.Predict(context.Background(), filled(10, 10, color.Gray{Y: 0}))
	if got != 0 {
		t.Errorf("Predict() black = %v, want 0", got)
	}
}

func TestProvider_LaplacianVariance(t *testing.T) {
	p := New()

	flat, err := p.LaplacianVariance(filled(20, 20, color.Gray{Y: 128}))
	if err != nil {
		t.Fatalf("LaplacianVariance() error = %v", err)
	}
	if flat != 0 {
		t.Errorf("flat image variance = %v, want 0", flat)
	}

	sharp, _ := p.LaplacianVariance(checkerboard(20, 20))
	if sharp <= 200 {
		t.Errorf("checkerboard variance = %v, want > 200", sharp)
	}
	if scoring.SharpnessScore(sharp) != 1 {
		t.Errorf("checkerboard sharpness score = %v, want 1", scoring.SharpnessScore(sharp))
	}

	empty, _ := p.LaplacianVariance(image.NewGray(image.Rect(0, 0, 0, 0)))
	if empty != 0 {
		t.Errorf("empty image variance = %v, want 0", empty)
	}
}

func TestReflect101(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{-1, 5, 1},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 3},
		{-1, 1, 0},
	}
	for _, c := range cases {
		if got := reflect101(c.i, c.n); got != c.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", c.i, c.n, got, c.want)
		}
	}
}
