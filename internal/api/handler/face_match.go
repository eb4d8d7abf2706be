package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

// FaceMatcher is the face-match service
type FaceMatcher interface {
	Match(ctx context.Context, icRef, selfieRef string) (domain.Result, error)
}

// FaceMatchRequest is the body of POST /face-match. Pointers distinguish a
// missing field from an empty reference.
type FaceMatchRequest struct {
	ICFrontURL *string `json:"icFrontUrl"`
	SelfieURL  *string `json:"selfieUrl"`
}

// FaceMatchHandler handles face-match requests
type FaceMatchHandler struct {
	service FaceMatcher
	opts    ResponseOptions
	auditor *Auditor
	logger  *slog.Logger
}

// NewFaceMatchHandler creates a new FaceMatchHandler instance
func NewFaceMatchHandler(service FaceMatcher, auditor *Auditor, opts ResponseOptions, logger *slog.Logger) *FaceMatchHandler {
	return &FaceMatchHandler{
		service: service,
		opts:    opts,
		auditor: auditor,
		logger:  logger,
	}
}

// Match POST /face-match - compare an identity document photo with a selfie
func (h *FaceMatchHandler) Match(c *fiber.Ctx) error {
	start := time.Now()

	var req FaceMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.ICFrontURL == nil {
		return domain.ErrValidationFailed.WithError(errors.New("icFrontUrl is required"))
	}
	if req.SelfieURL == nil {
		return domain.ErrValidationFailed.WithError(errors.New("selfieUrl is required"))
	}

	result, err := h.service.Match(c.UserContext(), *req.ICFrontURL, *req.SelfieURL)
	h.auditor.record(c, domain.ServiceFaceMatch, result, err, start)
	if err != nil {
		return err
	}

	return c.JSON(newScoreResponse(result, h.opts))
}
