package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-swagno/swagno"
	"github.com/gofiber/fiber/v2"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/audit"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

// Service names, also used as fiber app names and in /health
const (
	ServiceFaceMatch = "face-match"
	ServiceLiveness  = "liveness"
)

// LivenessService is the scorer behind POST /liveness
type LivenessService interface {
	handler.LivenessScorer
	Mode() string
}

// Dependencies wires one service. Exactly one of FaceMatch and Liveness is
// expected; routes are only registered for the ones provided.
type Dependencies struct {
	FaceMatch handler.FaceMatcher
	Liveness  LivenessService
	// Loader reports whether the model has been constructed. Optional.
	Loader      provider.Loader
	AuditLogger audit.Logger
	// ExposeResultStatus adds the result status to score responses
	ExposeResultStatus bool
	// DBCheck makes /ready depend on the audit database. Optional.
	DBCheck func(ctx context.Context) error
}

type Router struct {
	app     *fiber.App
	logger  *slog.Logger
	service string
	deps    *Dependencies
	auditor *handler.Auditor
}

func NewRouter(logger *slog.Logger, service string, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "kycscore " + service,
		DisableStartupMessage: true,
	})

	if deps == nil {
		deps = &Dependencies{}
	}

	auditLogger := deps.AuditLogger
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}

	return &Router{
		app:     app,
		logger:  logger,
		service: service,
		deps:    deps,
		auditor: handler.NewAuditor(auditLogger, logger),
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(middleware.RequestID())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))

	// Swagger documentation
	swagger.SwaggerHandler(r.app, r.swagger().MustToJson())

	healthHandler := handler.NewHealthHandler(r.service, r.deps.Loader)
	if r.deps.Liveness != nil {
		healthHandler.WithLivenessMode(r.deps.Liveness.Mode)
	}
	if r.deps.DBCheck != nil {
		healthHandler.WithDatabaseCheck(r.deps.DBCheck)
	}
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	opts := handler.ResponseOptions{ExposeStatus: r.deps.ExposeResultStatus}

	if r.deps.FaceMatch != nil {
		faceMatchHandler := handler.NewFaceMatchHandler(r.deps.FaceMatch, r.auditor, opts, r.logger)
		r.app.Post("/face-match", faceMatchHandler.Match)
	}

	if r.deps.Liveness != nil {
		livenessHandler := handler.NewLivenessHandler(r.deps.Liveness, r.auditor, opts, r.logger)
		r.app.Post("/liveness", livenessHandler.Score)
	}
}

func (r *Router) swagger() *swagno.Swagger {
	if r.service == ServiceLiveness {
		return docs.NewLivenessSwagger()
	}
	return docs.NewFaceMatchSwagger()
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting connections, waits for in-flight requests and
// then for audit writes they started.
func (r *Router) Shutdown(ctx context.Context) error {
	return errors.Join(r.app.ShutdownWithContext(ctx), r.WaitAudit(ctx))
}

// WaitAudit blocks until pending audit writes finish or ctx is done
func (r *Router) WaitAudit(ctx context.Context) error {
	return r.auditor.Wait(ctx)
}
