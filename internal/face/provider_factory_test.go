package face

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/config"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/imageref"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/dlib"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/opencv"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/rekognition"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewFaceBackend(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		faceProvider string
		check        func(t *testing.T, b *FaceBackend)
	}{
		{
			name:         "explicit dlib provider",
			faceProvider: "dlib",
			check: func(t *testing.T, b *FaceBackend) {
				assert.IsType(t, &dlib.Recognizer{}, b.Analyzer)
				assert.Nil(t, b.Comparer)
				assert.False(t, b.Loader.Loaded())
			},
		},
		{
			name:         "empty provider defaults to dlib",
			faceProvider: "",
			check: func(t *testing.T, b *FaceBackend) {
				assert.IsType(t, &dlib.Recognizer{}, b.Analyzer)
			},
		},
		{
			name:         "mock provider",
			faceProvider: "mock",
			check: func(t *testing.T, b *FaceBackend) {
				assert.IsType(t, &mock.Provider{}, b.Analyzer)
				assert.True(t, b.Loader.Loaded())
			},
		},
		{
			name:         "deepface sidecar",
			faceProvider: "deepface",
			check: func(t *testing.T, b *FaceBackend) {
				assert.IsType(t, &deepface.Analyzer{}, b.Analyzer)
				assert.Nil(t, b.Comparer)
				assert.False(t, b.Loader.Loaded())
			},
		},
		{
			name:         "rekognition provider",
			faceProvider: "rekognition",
			check: func(t *testing.T, b *FaceBackend) {
				assert.Nil(t, b.Analyzer)
				assert.IsType(t, &rekognition.Comparer{}, b.Comparer)
				assert.True(t, b.Loader.Loaded())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWS_ACCESS_KEY_ID", "test")
			t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

			cfg := &config.Config{
				FaceProvider:  tt.faceProvider,
				FaceModelRoot: t.TempDir(),
				FaceModel:     "dlib_resnet_v1",
				AWSRegion:     "us-east-1",
			}

			backend, err := NewFaceBackend(ctx, cfg, testLogger())
			require.NoError(t, err)
			defer backend.Close()

			tt.check(t, backend)
		})
	}
}

func TestNewFaceBackend_Unknown(t *testing.T) {
	cfg := &config.Config{FaceProvider: "insightface"}

	backend, err := NewFaceBackend(context.Background(), cfg, testLogger())
	assert.Error(t, err)
	assert.Nil(t, backend)
	assert.Contains(t, err.Error(), "unknown face provider")
}

func TestNewLivenessBackend(t *testing.T) {
	tests := []struct {
		name          string
		provider      string
		disabled      bool
		wantAvailable bool
		check         func(t *testing.T, b *LivenessBackend)
	}{
		{
			name:          "opencv default",
			provider:      "",
			wantAvailable: true,
			check: func(t *testing.T, b *LivenessBackend) {
				assert.IsType(t, &opencv.Liveness{}, b.Model)
				assert.IsType(t, &opencv.Liveness{}, b.Sharpness)
			},
		},
		{
			name:          "opencv disabled",
			provider:      "opencv",
			disabled:      true,
			wantAvailable: false,
		},
		{
			name:          "mock",
			provider:      "mock",
			wantAvailable: true,
			check: func(t *testing.T, b *LivenessBackend) {
				assert.IsType(t, &mock.Provider{}, b.Sharpness)
			},
		},
		{
			name:          "mock disabled",
			provider:      "mock",
			disabled:      true,
			wantAvailable: false,
			check: func(t *testing.T, b *LivenessBackend) {
				_, err := b.Model.Predict(context.Background(), nil)
				assert.ErrorIs(t, err, provider.ErrModelUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				LivenessProvider: tt.provider,
				LivenessModel:    "/nonexistent/model.onnx",
				LivenessDisabled: tt.disabled,
			}

			backend, err := NewLivenessBackend(cfg, testLogger())
			require.NoError(t, err)
			defer backend.Close()

			assert.Equal(t, tt.wantAvailable, backend.Model.Available())
			if tt.check != nil {
				tt.check(t, backend)
			}
		})
	}
}

func TestNewLivenessBackend_Unknown(t *testing.T) {
	_, err := NewLivenessBackend(&config.Config{LivenessProvider: "onnxruntime"}, testLogger())
	assert.Error(t, err)
}

func TestNewImageResolver_UsesConfiguredBaseDirs(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "selfie.png"), buf.Bytes(), 0o600))

	resolver := NewImageResolver(&config.Config{ImageBaseDirs: []string{dir}}, testLogger())

	got, err := resolver.Resolve(context.Background(), "selfie.png")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Bounds().Dx())

	_, err = resolver.Resolve(context.Background(), "missing.png")
	assert.ErrorIs(t, err, imageref.ErrNoImage)
}

func TestDeepFaceConfig(t *testing.T) {
	cfg := &config.Config{
		DeepFaceURL:      "http://deepface:5005",
		DeepFaceModel:    "Facenet512",
		DeepFaceDetector: "mtcnn",
		DeepFaceTimeout:  5 * time.Second,
	}

	got := deepFaceConfig(cfg)
	assert.Equal(t, "http://deepface:5005", got.BaseURL)
	assert.Equal(t, "Facenet512", got.Model)
	assert.Equal(t, "mtcnn", got.Detector)
	assert.Equal(t, 5*time.Second, got.Timeout)

	defaults := deepFaceConfig(&config.Config{})
	assert.Equal(t, deepface.DefaultConfig(), defaults)
}
