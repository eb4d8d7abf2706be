package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

const (
	embeddingDimension = 128
	// minFaceSide is the smallest image edge on which a face is reported
	minFaceSide = 16
)

// Provider implements the analyzer, liveness and sharpness interfaces without
// any native model. Results are deterministic functions of the pixels, so the
// same image always yields the same embedding and liveness score.
type Provider struct{}

// New cria um novo Provider determinístico
func New() *Provider {
	return &Provider{}
}

var (
	_ provider.FaceAnalyzer   = (*Provider)(nil)
	_ provider.LivenessModel  = (*Provider)(nil)
	_ provider.SharpnessMeter = (*Provider)(nil)
	_ provider.Loader         = (*Provider)(nil)
)

// DetectFaces reports a single centered face on any image of at least
// minFaceSide pixels per edge, and no face otherwise.
func (p *Provider) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() < minFaceSide || b.Dy() < minFaceSide {
		return []provider.DetectedFace{}, nil
	}

	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      float64(b.Min.X) + float64(b.Dx())*0.1,
				Y:      float64(b.Min.Y) + float64(b.Dy())*0.1,
				Width:  float64(b.Dx()) * 0.8,
				Height: float64(b.Dy()) * 0.8,
			},
			Embedding: generateEmbedding(img),
		},
	}, nil
}

// Available always reports true
func (p *Provider) Available() bool {
	return true
}

// Loaded always reports true; there is nothing to load
func (p *Provider) Loaded() bool {
	return true
}

// Predict returns the mean luminance in [0,1] as a stand-in network output
func (p *Provider) Predict(ctx context.Context, img image.Image) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b := img.Bounds()
	if b.Empty() {
		return 0, nil
	}

	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += luminance(img.At(x, y))
		}
	}
	return sum / float64(b.Dx()*b.Dy()) / 255.0, nil
}

// LaplacianVariance computes the variance of the 4-neighbour Laplacian over
// the grayscale image. Border pixels reflect their neighbours.
func (p *Provider) LaplacianVariance(img image.Image) (float64, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0, nil
	}

	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray[y*w+x] = luminance(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	at := func(x, y int) float64 {
		x = reflect101(x, w)
		y = reflect101(y, h)
		return gray[y*w+x]
	}

	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += v
			sumSq += v * v
		}
	}

	n := float64(w * h)
	mean := sum / n
	return math.Max(sumSq/n-mean*mean, 0), nil
}

// reflect101 mirrors an out-of-range index without repeating the edge pixel
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*n - i - 2
	}
	return i
}

func luminance(c color.Color) float64 {
	g := color.GrayModel.Convert(c).(color.Gray)
	return float64(g.Y)
}

// generateEmbedding gera embedding determinístico baseado no hash da imagem
func generateEmbedding(img image.Image) []float64 {
	h := sha256.New()
	b := img.Bounds()
	buf := make([]byte, 4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			binary.BigEndian.PutUint32(buf, r>>8<<16|g>>8<<8|bl>>8)
			_, _ = h.Write(buf)
		}
	}
	hash := h.Sum(nil)

	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := (i*7 + i/hashLen) % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return embedding
	}

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}
