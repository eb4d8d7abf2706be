package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

// Version is reported by /health
const Version = "0.1.0"

type HealthHandler struct {
	service      string
	loader       provider.Loader
	livenessMode func() string
	dbCheck      func(ctx context.Context) error
}

// NewHealthHandler creates the health handler of one service. loader may be
// nil when there is no model to report on.
func NewHealthHandler(service string, loader provider.Loader) *HealthHandler {
	return &HealthHandler{
		service: service,
		loader:  loader,
	}
}

// WithLivenessMode reports whether liveness scores come from the network or the heuristic
func (h *HealthHandler) WithLivenessMode(mode func() string) *HealthHandler {
	h.livenessMode = mode
	return h
}

// WithDatabaseCheck makes readiness depend on the audit database
func (h *HealthHandler) WithDatabaseCheck(check func(ctx context.Context) error) *HealthHandler {
	h.dbCheck = check
	return h
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status       string `json:"status"`
	ModelLoaded  *bool  `json:"model_loaded,omitempty"`
	LivenessMode string `json:"liveness_mode,omitempty"`
	Database     string `json:"database,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Service: h.service,
		Version: Version,
	})
}

// Ready reports readiness. Models load on first use, so an unloaded model
// does not make the service unready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := ReadyResponse{Status: "ready"}

	if h.loader != nil {
		loaded := h.loader.Loaded()
		resp.ModelLoaded = &loaded
	}
	if h.livenessMode != nil {
		resp.LivenessMode = h.livenessMode()
	}

	if h.dbCheck != nil {
		if err := h.dbCheck(c.UserContext()); err != nil {
			resp.Status = "unavailable"
			resp.Database = "down"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp.Database = "up"
	}

	return c.JSON(resp)
}
