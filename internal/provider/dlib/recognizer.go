// Package dlib detects faces and computes 128-d embeddings with dlib's
// ResNet model through go-face. Only this package links against dlib.
package dlib

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Kagami/go-face"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/scoring"
)

// Config holds the model location for the recognizer
type Config struct {
	// ModelRoot is the directory holding one subdirectory per model.
	ModelRoot string
	// Model names the subdirectory with shape_predictor_5_face_landmarks.dat,
	// dlib_face_recognition_resnet_model_v1.dat and mmod_human_face_detector.dat.
	Model string
	// JPEGQuality is used to hand decoded pixels to dlib, which only reads JPEG.
	JPEGQuality int
}

// Dir returns the directory the recognizer loads its weights from
func (c Config) Dir() string {
	return filepath.Join(c.ModelRoot, c.Model)
}

// Recognizer implements provider.FaceAnalyzer. The dlib recognizer is built
// on first use and shared by every request of the process.
type Recognizer struct {
	config Config
	model  *provider.Lazy[*face.Recognizer]
	logger *slog.Logger
}

var (
	_ provider.FaceAnalyzer = (*Recognizer)(nil)
	_ provider.Loader       = (*Recognizer)(nil)
)

// NewRecognizer creates a Recognizer. No weights are read until the first
// call to DetectFaces.
func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 95
	}
	logger = logger.With("component", "dlib")

	r := &Recognizer{
		config: cfg,
		logger: logger,
	}
	r.model = provider.NewLazy(r.load)
	return r
}

func (r *Recognizer) load() (*face.Recognizer, error) {
	start := time.Now()
	dir := r.config.Dir()

	rec, err := face.NewRecognizer(dir)
	if err != nil {
		r.logger.Error("failed to load face model", slog.String("dir", dir), slog.Any("error", err))
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	r.logger.Info("face model loaded",
		slog.String("dir", dir),
		slog.Duration("duration", time.Since(start)),
	)
	return rec, nil
}

// DetectFaces returns every face dlib finds together with its embedding.
// An image without faces yields an empty slice and no error.
func (r *Recognizer) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.config.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	var faces []face.Face
	err := r.model.Do(func(rec *face.Recognizer) error {
		var err error
		faces, err = rec.Recognize(buf.Bytes())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	// Recognize reports coordinates relative to the encoded JPEG, which
	// always starts at the origin.
	offset := img.Bounds().Min

	detected := make([]provider.DetectedFace, 0, len(faces))
	for _, f := range faces {
		detected = append(detected, provider.DetectedFace{
			BoundingBox: provider.BoundingBoxFromRect(f.Rectangle.Add(offset)),
			Embedding:   descriptorToEmbedding(f.Descriptor),
		})
	}

	return detected, nil
}

// Loaded reports whether the dlib model has been built
func (r *Recognizer) Loaded() bool {
	return r.model.Loaded()
}

// Close releases the native recognizer
func (r *Recognizer) Close() {
	r.model.Close(func(rec *face.Recognizer) {
		rec.Close()
	})
}

func descriptorToEmbedding(d face.Descriptor) []float64 {
	return scoring.Float64s(d[:])
}
