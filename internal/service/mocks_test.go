package service

import (
	"context"
	"image"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testImage(w, h int) image.Image {
	return image.NewGray(image.Rect(0, 0, w, h))
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, ref string) (image.Image, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(image.Image), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.DetectedFace), args.Error(1)
}

type MockComparer struct {
	mock.Mock
}

func (m *MockComparer) CompareFaceImages(ctx context.Context, source, target image.Image) (float64, error) {
	args := m.Called(ctx, source, target)
	return args.Get(0).(float64), args.Error(1)
}

type MockLivenessModel struct {
	mock.Mock
}

func (m *MockLivenessModel) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockLivenessModel) Predict(ctx context.Context, img image.Image) (float64, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(float64), args.Error(1)
}

type MockSharpnessMeter struct {
	mock.Mock
}

func (m *MockSharpnessMeter) LaplacianVariance(img image.Image) (float64, error) {
	args := m.Called(img)
	return args.Get(0).(float64), args.Error(1)
}

func face(w, h float64, embedding ...float64) provider.DetectedFace {
	return provider.DetectedFace{
		BoundingBox: provider.BoundingBox{Width: w, Height: h},
		Embedding:   embedding,
	}
}
