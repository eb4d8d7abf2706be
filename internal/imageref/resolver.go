// Package imageref turns an image reference (URL or path) into decoded pixels.
package imageref

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"

	// Registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Resolver fetches and decodes images referenced by URL or filesystem path.
// It is safe for concurrent use.
type Resolver struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
	readFile   func(name string) ([]byte, error)
}

// NewResolver creates a new Resolver
func NewResolver(config Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:   config,
		logger:   logger.With("component", "imageref"),
		readFile: os.ReadFile,
	}
}

// Resolve returns the decoded image behind ref.
//
// Remote references return ErrFetchFailed on transport errors or non-success
// statuses and ErrNoImage when the body does not decode. Local references try
// every candidate path in order and return ErrNoImage when none decodes.
func (r *Resolver) Resolve(ctx context.Context, ref string) (image.Image, error) {
	if IsRemote(ref) {
		data, err := r.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		img, err := Decode(data)
		if err != nil {
			r.logger.DebugContext(ctx, "remote image did not decode", slog.Any("error", err))
			return nil, ErrNoImage
		}
		return img, nil
	}

	for _, candidate := range r.config.Candidates(ref) {
		data, err := r.readFile(candidate)
		if err != nil {
			r.logger.DebugContext(ctx, "image candidate unreadable",
				slog.String("path", candidate),
				slog.Any("error", err),
			)
			continue
		}

		img, err := Decode(data)
		if err != nil {
			r.logger.DebugContext(ctx, "image candidate did not decode",
				slog.String("path", candidate),
				slog.Any("error", err),
			)
			continue
		}
		return img, nil
	}

	return nil, ErrNoImage
}

// Decode decodes any registered image format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// fetch executes a single GET; remote fetches are never retried
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	limit := r.config.MaxBytes
	if limit <= 0 {
		limit = DefaultConfig().MaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrFetchFailed, limit)
	}

	return data, nil
}
