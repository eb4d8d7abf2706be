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

// FaceMatchService compares the face on an identity document with a selfie.
type FaceMatchService struct {
	resolver ImageResolver
	analyzer provider.FaceAnalyzer
	comparer provider.FaceComparer
	logger   *slog.Logger
}

func NewFaceMatchService(resolver ImageResolver, analyzer provider.FaceAnalyzer, logger *slog.Logger) *FaceMatchService {
	return &FaceMatchService{
		resolver: resolver,
		analyzer: analyzer,
		logger:   logger.With("service", string(domain.ServiceFaceMatch)),
	}
}

// WithComparer scores through a provider that compares images directly.
// It takes precedence over the embedding analyzer.
func (s *FaceMatchService) WithComparer(comparer provider.FaceComparer) *FaceMatchService {
	s.comparer = comparer
	return s
}

// Match scores how likely icRef and selfieRef show the same person.
//
// An unresolvable reference or an image without faces yields a non-scored
// result, which callers report as 0. Fetch and model failures are errors.
func (s *FaceMatchService) Match(ctx context.Context, icRef, selfieRef string) (domain.Result, error) {
	// Both references are resolved before either is checked, so a failing
	// selfie fetch is reported even when the id card is unresolvable.
	ic, icOK, err := resolve(ctx, s.resolver, icRef)
	if err != nil {
		return domain.Result{}, fmt.Errorf("resolve id card: %w", err)
	}
	selfie, selfieOK, err := resolve(ctx, s.resolver, selfieRef)
	if err != nil {
		return domain.Result{}, fmt.Errorf("resolve selfie: %w", err)
	}
	if !icOK || !selfieOK {
		s.logger.DebugContext(ctx, "image unresolvable",
			slog.Bool("id_card", icOK),
			slog.Bool("selfie", selfieOK),
		)
		return domain.Unresolvable(), nil
	}

	if s.comparer != nil {
		return s.compareImages(ctx, ic, selfie)
	}
	return s.compareEmbeddings(ctx, ic, selfie)
}

func (s *FaceMatchService) compareEmbeddings(ctx context.Context, ic, selfie image.Image) (domain.Result, error) {
	icFaces, err := s.analyzer.DetectFaces(ctx, ic)
	if err != nil {
		return domain.Result{}, fmt.Errorf("detect faces on id card: %w", modelError(err))
	}
	selfieFaces, err := s.analyzer.DetectFaces(ctx, selfie)
	if err != nil {
		return domain.Result{}, fmt.Errorf("detect faces on selfie: %w", modelError(err))
	}

	icFace, icFound := provider.LargestFace(icFaces)
	selfieFace, selfieFound := provider.LargestFace(selfieFaces)
	if !icFound || !selfieFound {
		s.logger.DebugContext(ctx, "no face detected",
			slog.Int("id_card_faces", len(icFaces)),
			slog.Int("selfie_faces", len(selfieFaces)),
		)
		return domain.NoFaceDetected(), nil
	}

	similarity := scoring.CosineSimilarity(icFace.Embedding, selfieFace.Embedding)

	s.logger.DebugContext(ctx, "faces compared",
		slog.Int("id_card_faces", len(icFaces)),
		slog.Int("selfie_faces", len(selfieFaces)),
		slog.Float64("similarity", similarity),
	)

	return domain.Scored(scoring.MatchScore(similarity), domain.MethodEmbedding), nil
}

func (s *FaceMatchService) compareImages(ctx context.Context, ic, selfie image.Image) (domain.Result, error) {
	similarity, err := s.comparer.CompareFaceImages(ctx, ic, selfie)
	if errors.Is(err, provider.ErrNoFaceDetected) {
		s.logger.DebugContext(ctx, "comparer found no face", slog.Any("error", err))
		return domain.NoFaceDetected(), nil
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("compare faces: %w", modelError(err))
	}

	return domain.Scored(scoring.MatchScore(similarity), domain.MethodRekognition), nil
}
