// Package server assembles and runs one scoring service process.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/api"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/audit"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/config"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/database"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/face"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/repository"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Run serves the named service until SIGINT or SIGTERM
func Run(serviceName string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment, serviceName)
	slog.SetDefault(logger)

	logger.Info("starting kycscore",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &api.Dependencies{ExposeResultStatus: cfg.ExposeResultStatus}

	auditLogger, pool, err := NewAuditLogger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		deps.DBCheck = func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		}

		if cfg.AuditRetention > 0 {
			retention := audit.NewRetentionWorker(
				repository.NewInferenceRepository(pool),
				logger,
				cfg.AuditRetention,
				cfg.AuditRetentionInterval,
			)
			go retention.Start(ctx)
			defer retention.Stop()
		}
	}
	deps.AuditLogger = auditLogger

	resolver := face.NewImageResolver(cfg, logger)

	switch serviceName {
	case api.ServiceFaceMatch:
		backend, err := face.NewFaceBackend(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create face backend: %w", err)
		}
		defer backend.Close()

		deps.FaceMatch = NewFaceMatchService(resolver, backend, logger)
		deps.Loader = backend.Loader

		logger.Info("face backend ready", slog.String("provider", cfg.FaceProvider))

	case api.ServiceLiveness:
		backend, err := face.NewLivenessBackend(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create liveness backend: %w", err)
		}
		defer backend.Close()

		livenessService := service.NewLivenessService(resolver, backend.Model, backend.Sharpness, logger)
		deps.Liveness = livenessService
		deps.Loader = backend.Loader

		logger.Info("liveness backend ready",
			slog.String("provider", cfg.LivenessProvider),
			slog.String("mode", livenessService.Mode()),
		)

	default:
		return fmt.Errorf("unknown service: %s", serviceName)
	}

	router := api.NewRouter(logger, serviceName, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}

// NewFaceMatchService wires the backend's analyzer or comparer into the service
func NewFaceMatchService(resolver service.ImageResolver, backend *face.FaceBackend, logger *slog.Logger) *service.FaceMatchService {
	svc := service.NewFaceMatchService(resolver, backend.Analyzer, logger)
	if backend.Comparer != nil {
		svc.WithComparer(backend.Comparer)
	}
	return svc
}

// NewAuditLogger always logs audit events through slog and also stores them
// in Postgres when DATABASE_URL is set. The returned pool is nil without a
// database and must be closed by the caller otherwise.
func NewAuditLogger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (audit.Logger, *pgxpool.Pool, error) {
	slogLogger := audit.NewSlogLogger(logger)
	if !cfg.AuditEnabled() {
		return slogLogger, nil, nil
	}

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect audit database: %w", err)
	}

	logger.Info("audit database connected")

	store := audit.NewStoreLogger(repository.NewInferenceRepository(pool))
	return audit.NewMultiLogger(slogLogger, store), pool, nil
}
