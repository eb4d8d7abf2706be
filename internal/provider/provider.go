package provider

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrModelUnavailable is reported by a liveness model that has been disabled.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrNoFaceDetected is returned by comparers that cannot find a face in an input.
	ErrNoFaceDetected = errors.New("no face detected in image")
)

// FaceAnalyzer detects every face in an image together with its embedding.
type FaceAnalyzer interface {
	DetectFaces(ctx context.Context, img image.Image) ([]DetectedFace, error)
}

// FaceComparer scores two images directly, for providers that do not expose
// embeddings. The similarity is on a 0.0 to 1.0 scale.
type FaceComparer interface {
	CompareFaceImages(ctx context.Context, source, target image.Image) (float64, error)
}

// LivenessModel runs a liveness network over a selfie and returns the mean of
// its raw output. Available reports false when the model has been disabled and
// callers must use a heuristic instead.
type LivenessModel interface {
	Available() bool
	Predict(ctx context.Context, img image.Image) (float64, error)
}

// SharpnessMeter measures focus as the variance of the image Laplacian.
type SharpnessMeter interface {
	LaplacianVariance(img image.Image) (float64, error)
}

// Loader is implemented by holders that can report whether their model has
// been constructed yet.
type Loader interface {
	Loaded() bool
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Embedding   []float64   `json:"-"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// BoundingBoxFromRect converts pixel corners to a BoundingBox.
func BoundingBoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// LargestFace returns the detection with the largest bounding-box area. Ties
// keep the earliest detection. ok is false for an empty slice.
func LargestFace(faces []DetectedFace) (face DetectedFace, ok bool) {
	if len(faces) == 0 {
		return DetectedFace{}, false
	}
	best := 0
	for i := 1; i < len(faces); i++ {
		if faces[i].BoundingBox.Area() > faces[best].BoundingBox.Area() {
			best = i
		}
	}
	return faces[best], true
}
