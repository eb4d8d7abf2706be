package dlib

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/imageref"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/scoring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfig_Dir(t *testing.T) {
	cfg := Config{ModelRoot: "/srv/models", Model: "dlib_resnet_v1"}
	assert.Equal(t, "/srv/models/dlib_resnet_v1", cfg.Dir())
}

func TestRecognizer_MissingModelIsRetried(t *testing.T) {
	rec := NewRecognizer(Config{ModelRoot: t.TempDir(), Model: "absent"}, testLogger())
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))

	for i := 0; i < 2; i++ {
		faces, err := rec.DetectFaces(context.Background(), img)
		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrModelLoad)
		assert.Nil(t, faces)
		assert.False(t, rec.Loaded())
	}
}

// Runs against real weights when KYC_TEST_FACE_MODEL_DIR points at a
// directory containing the dlib model files.
func TestRecognizer_WithModel(t *testing.T) {
	dir := os.Getenv("KYC_TEST_FACE_MODEL_DIR")
	if dir == "" {
		t.Skip("KYC_TEST_FACE_MODEL_DIR not set")
	}

	rec := NewRecognizer(Config{ModelRoot: dir}, testLogger())
	defer rec.Close()

	blank := image.NewUniform(color.Gray{Y: 200})
	faces, err := rec.DetectFaces(context.Background(), &subImage{blank, image.Rect(0, 0, 128, 128)})
	require.NoError(t, err)
	assert.Empty(t, faces)
	assert.True(t, rec.Loaded())

	sample := os.Getenv("KYC_TEST_FACE_IMAGE")
	if sample == "" {
		return
	}
	data, err := os.ReadFile(sample)
	require.NoError(t, err)
	img, err := imageref.Decode(data)
	require.NoError(t, err)

	faces, err = rec.DetectFaces(context.Background(), img)
	require.NoError(t, err)
	require.NotEmpty(t, faces)

	largest, ok := provider.LargestFace(faces)
	require.True(t, ok)
	assert.Len(t, largest.Embedding, 128)
	assert.Equal(t, 1.0, scoring.MatchScore(scoring.CosineSimilarity(largest.Embedding, largest.Embedding)))
}

// subImage bounds an infinite image.Uniform
type subImage struct {
	image.Image
	bounds image.Rectangle
}

func (s *subImage) Bounds() image.Rectangle { return s.bounds }
