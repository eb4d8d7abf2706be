// Package service scores face-match and liveness requests over decoded images.
package service

import (
	"context"
	"errors"
	"image"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/imageref"
)

// ImageResolver turns an image reference into pixels
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (image.Image, error)
}

// resolve maps resolver outcomes onto the service contract: ok is false when
// the reference yields no image, and fetch failures become AppErrors.
func resolve(ctx context.Context, resolver ImageResolver, ref string) (img image.Image, ok bool, err error) {
	img, err = resolver.Resolve(ctx, ref)
	switch {
	case err == nil:
		return img, true, nil
	case errors.Is(err, imageref.ErrNoImage):
		return nil, false, nil
	case errors.Is(err, imageref.ErrFetchFailed):
		return nil, false, domain.ErrImageFetchFailed.WithError(err)
	default:
		return nil, false, domain.ErrInternal.WithError(err)
	}
}

// modelError wraps a failure from a model holder, keeping context
// cancellation distinguishable.
func modelError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.ErrModelFailed.WithError(err)
}
