// Package opencv runs the ONNX liveness network and the sharpness heuristic
// through OpenCV (gocv). Only this package links against OpenCV.
package opencv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/scoring"
)

// InputSize is the square edge the liveness network expects.
const InputSize = 224

// Config holds the configuration for the liveness network
type Config struct {
	// ModelPath is the ONNX file loaded on first use.
	ModelPath string
	// Disabled forces callers onto the sharpness heuristic.
	Disabled bool
}

// Liveness implements provider.LivenessModel and provider.SharpnessMeter.
type Liveness struct {
	config Config
	net    *provider.Lazy[*gocv.Net]
	logger *slog.Logger
}

var (
	_ provider.LivenessModel  = (*Liveness)(nil)
	_ provider.SharpnessMeter = (*Liveness)(nil)
	_ provider.Loader         = (*Liveness)(nil)
)

// NewLiveness creates a Liveness holder. The network is read on the first
// Predict call.
func NewLiveness(cfg Config, logger *slog.Logger) *Liveness {
	l := &Liveness{
		config: cfg,
		logger: logger.With("component", "opencv"),
	}
	l.net = provider.NewLazy(l.load)
	return l
}

func (l *Liveness) load() (*gocv.Net, error) {
	start := time.Now()

	if _, err := os.Stat(l.config.ModelPath); err != nil {
		return nil, fmt.Errorf("model file %s: %w", l.config.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(l.config.ModelPath)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load liveness model from %s", l.config.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	l.logger.Info("liveness model loaded",
		slog.String("path", l.config.ModelPath),
		slog.Duration("duration", time.Since(start)),
	)
	return &net, nil
}

// Available reports false when the model has been disabled by configuration
func (l *Liveness) Available() bool {
	return !l.config.Disabled
}

// Loaded reports whether the network has been read
func (l *Liveness) Loaded() bool {
	return l.net.Loaded()
}

// Predict runs the network on the center square of img and returns the mean
// of its first output.
func (l *Liveness) Predict(ctx context.Context, img image.Image) (float64, error) {
	if !l.Available() {
		return 0, provider.ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	blob, err := inputBlob(img)
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	var mean float64
	err = l.net.Do(func(net *gocv.Net) error {
		net.SetInput(blob, "")
		output := net.Forward("")
		defer output.Close()

		if output.Empty() {
			return errors.New("liveness model returned an empty output")
		}
		values, err := output.DataPtrFloat32()
		if err != nil {
			return fmt.Errorf("read output: %w", err)
		}
		mean = scoring.Mean(values)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("liveness inference: %w", err)
	}

	return mean, nil
}

// inputBlob crops the center square of img, resizes it to InputSize, swaps
// BGR to RGB and scales to [0,1], returning a 1x3xInputSizexInputSize NCHW blob.
func inputBlob(img image.Image) (gocv.Mat, error) {
	mat, err := toBGR(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer mat.Close()

	square := mat.Region(provider.CenterSquare(image.Rect(0, 0, mat.Cols(), mat.Rows())))
	defer square.Close()

	return gocv.BlobFromImage(
		square,
		1.0/255.0,
		image.Pt(InputSize, InputSize),
		gocv.NewScalar(0, 0, 0, 0),
		true,
		false,
	), nil
}

// LaplacianVariance converts img to grayscale, applies a 3x3 Laplacian in
// 64-bit float and returns the variance of the response.
func (l *Liveness) LaplacianVariance(img image.Image) (float64, error) {
	mat, err := toBGR(img)
	if err != nil {
		return 0, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)
	if stddev.Empty() {
		return 0, errors.New("laplacian variance unavailable")
	}

	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd, nil
}

// Close releases the native network
func (l *Liveness) Close() {
	l.net.Close(func(net *gocv.Net) {
		net.Close()
	})
}

func toBGR(img image.Image) (gocv.Mat, error) {
	if img == nil || img.Bounds().Empty() {
		return gocv.NewMat(), errors.New("empty image")
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert image: %w", err)
	}
	return mat, nil
}
