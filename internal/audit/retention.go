package audit

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes audit records past their retention
type Pruner interface {
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// RetentionWorker periodically deletes audit records older than the
// retention period
type RetentionWorker struct {
	pruner    Pruner
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

// NewRetentionWorker creates a new retention worker
func NewRetentionWorker(pruner Pruner, logger *slog.Logger, retention, interval time.Duration) *RetentionWorker {
	if interval == 0 {
		interval = time.Hour
	}

	return &RetentionWorker{
		pruner:    pruner,
		logger:    logger,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start prunes once immediately and then on every tick until ctx is done or
// Stop is called
func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("audit retention worker started",
		"retention", w.retention,
		"interval", w.interval,
	)

	w.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit retention worker stopped")
			return
		case <-w.done:
			w.logger.Info("audit retention worker stopped")
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

// Stop gracefully shuts down the worker. It must be called at most once.
func (w *RetentionWorker) Stop() {
	close(w.done)
}

func (w *RetentionWorker) prune(ctx context.Context) {
	deleted, err := w.pruner.DeleteOlderThan(ctx, w.retention)
	if err != nil {
		w.logger.Error("failed to delete old audit records", "error", err)
		return
	}
	if deleted > 0 {
		w.logger.Info("deleted old audit records", "count", deleted)
	}
}
