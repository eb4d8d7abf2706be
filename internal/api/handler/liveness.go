package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

// LivenessScorer is the liveness service
type LivenessScorer interface {
	Score(ctx context.Context, selfieRef string) (domain.Result, error)
}

// LivenessRequest is the body of POST /liveness
type LivenessRequest struct {
	SelfieURL *string `json:"selfieUrl"`
}

// LivenessHandler handles liveness requests
type LivenessHandler struct {
	service LivenessScorer
	opts    ResponseOptions
	auditor *Auditor
	logger  *slog.Logger
}

// NewLivenessHandler creates a new LivenessHandler instance
func NewLivenessHandler(service LivenessScorer, auditor *Auditor, opts ResponseOptions, logger *slog.Logger) *LivenessHandler {
	return &LivenessHandler{
		service: service,
		opts:    opts,
		auditor: auditor,
		logger:  logger,
	}
}

// Score POST /liveness - score whether a selfie shows a live subject
func (h *LivenessHandler) Score(c *fiber.Ctx) error {
	start := time.Now()

	var req LivenessRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.SelfieURL == nil {
		return domain.ErrValidationFailed.WithError(errors.New("selfieUrl is required"))
	}

	result, err := h.service.Score(c.UserContext(), *req.SelfieURL)
	h.auditor.record(c, domain.ServiceLiveness, result, err, start)
	if err != nil {
		return err
	}

	return c.JSON(newScoreResponse(result, h.opts))
}
