package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/scoring"
)

// Liveness modes reported by Mode
const (
	LivenessModeModel     = "model"
	LivenessModeHeuristic = "heuristic"
)

// LivenessService scores whether a selfie shows a live subject.
type LivenessService struct {
	resolver  ImageResolver
	model     provider.LivenessModel
	sharpness provider.SharpnessMeter
	logger    *slog.Logger
}

func NewLivenessService(
	resolver ImageResolver,
	model provider.LivenessModel,
	sharpness provider.SharpnessMeter,
	logger *slog.Logger,
) *LivenessService {
	return &LivenessService{
		resolver:  resolver,
		model:     model,
		sharpness: sharpness,
		logger:    logger.With("service", string(domain.ServiceLiveness)),
	}
}

// Mode reports whether scores come from the network or the sharpness heuristic
func (s *LivenessService) Mode() string {
	if s.model != nil && s.model.Available() {
		return LivenessModeModel
	}
	return LivenessModeHeuristic
}

// Score returns the liveness of the selfie behind selfieRef. Without an
// available network the score falls back to image sharpness.
func (s *LivenessService) Score(ctx context.Context, selfieRef string) (domain.Result, error) {
	selfie, ok, err := resolve(ctx, s.resolver, selfieRef)
	if err != nil {
		return domain.Result{}, fmt.Errorf("resolve selfie: %w", err)
	}
	if !ok {
		s.logger.DebugContext(ctx, "selfie image unresolvable")
		return domain.Unresolvable(), nil
	}

	if s.Mode() == LivenessModeHeuristic {
		return s.heuristic(ctx, selfie)
	}

	raw, err := s.model.Predict(ctx, selfie)
	if errors.Is(err, provider.ErrModelUnavailable) {
		return s.heuristic(ctx, selfie)
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("predict liveness: %w", modelError(err))
	}

	s.logger.DebugContext(ctx, "liveness predicted", slog.Float64("raw", raw))

	return domain.Scored(scoring.LivenessScore(raw), domain.MethodModel), nil
}

func (s *LivenessService) heuristic(ctx context.Context, selfie image.Image) (domain.Result, error) {
	variance, err := s.sharpness.LaplacianVariance(selfie)
	if err != nil {
		return domain.Result{}, fmt.Errorf("measure sharpness: %w", modelError(err))
	}

	s.logger.DebugContext(ctx, "liveness from sharpness", slog.Float64("variance", variance))

	return domain.Scored(scoring.SharpnessScore(variance), domain.MethodHeuristic), nil
}
