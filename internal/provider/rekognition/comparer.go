package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Comparer implements provider.FaceComparer using the CompareFaces API.
// Rekognition does not expose embeddings, so both images are uploaded.
type Comparer struct {
	api    API
	config Config
}

var _ provider.FaceComparer = (*Comparer)(nil)

// NewComparer creates a Comparer backed by the given API client
func NewComparer(api API, cfg Config) *Comparer {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultConfig().JPEGQuality
	}
	return &Comparer{api: api, config: cfg}
}

// CompareFaceImages returns the similarity of the best face match between
// source and target, between 0.0 and 1.0. It returns 0 when Rekognition finds
// faces that do not match and provider.ErrNoFaceDetected when either image
// has no face.
func (c *Comparer) CompareFaceImages(ctx context.Context, source, target image.Image) (float64, error) {
	sourceBytes, err := c.encode(source)
	if err != nil {
		return 0, fmt.Errorf("source image: %w", err)
	}
	targetBytes, err := c.encode(target)
	if err != nil {
		return 0, fmt.Errorf("target image: %w", err)
	}

	input := &rekognition.CompareFacesInput{
		SourceImage: &types.Image{
			Bytes: sourceBytes,
		},
		TargetImage: &types.Image{
			Bytes: targetBytes,
		},
		SimilarityThreshold: aws.Float32(float32(c.config.SimilarityThreshold * 100)), // Convert 0-1 to 0-100
	}

	output, err := c.api.CompareFaces(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("compare faces: %w", ParseCompareError(err))
	}

	if output.SourceImageFace == nil {
		return 0, provider.ErrNoFaceDetected
	}
	if len(output.FaceMatches) == 0 {
		if len(output.UnmatchedFaces) == 0 {
			return 0, provider.ErrNoFaceDetected
		}
		return 0, nil
	}

	best := float32(0)
	for _, match := range output.FaceMatches {
		if match.Similarity != nil && *match.Similarity > best {
			best = *match.Similarity
		}
	}

	return float64(best) / 100.0, nil
}

// encode re-encodes decoded pixels as JPEG and checks Rekognition's size limits
func (c *Comparer) encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.config.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %v", ErrInvalidImage, err)
	}

	return validateImage(buf.Bytes())
}

func validateImage(data []byte) ([]byte, error) {
	if len(data) < minImageSize {
		return nil, fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(data), minImageSize)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(data), maxImageSize)
	}
	return data, nil
}
