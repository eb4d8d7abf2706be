package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

// noFaceMessage is how the sidecar rejects an image when detection is enforced
const noFaceMessage = "could not be detected"

// Analyzer implements provider.FaceAnalyzer on a DeepFace sidecar
type Analyzer struct {
	client *Client
	config Config
	// reached is set after the first successful response
	reached atomic.Bool
}

var (
	_ provider.FaceAnalyzer = (*Analyzer)(nil)
	_ provider.Loader       = (*Analyzer)(nil)
)

// NewAnalyzer creates a new DeepFace analyzer
func NewAnalyzer(config Config) *Analyzer {
	return &Analyzer{
		client: NewClient(config),
		config: config,
	}
}

// Loaded reports whether the sidecar has answered at least once
func (a *Analyzer) Loaded() bool {
	return a.reached.Load()
}

// DetectFaces returns every face the sidecar detects with its embedding.
// An image the sidecar finds no face in yields an empty slice.
func (a *Analyzer) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.config.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	resp, err := a.client.Represent(ctx, dataURI)
	if isNoFace(err) {
		a.reached.Store(true)
		return []provider.DetectedFace{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	a.reached.Store(true)

	origin := img.Bounds().Min
	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Embedding) == 0 {
			return nil, fmt.Errorf("detect faces: %w: empty embedding", ErrInvalidResponse)
		}
		area := result.FacialArea
		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(origin.X + area.X),
				Y:      float64(origin.Y + area.Y),
				Width:  float64(area.W),
				Height: float64(area.H),
			},
			Embedding: result.Embedding,
		})
	}

	return faces, nil
}

func isNoFace(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) &&
		statusErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(statusErr.Body, noFaceMessage)
}
