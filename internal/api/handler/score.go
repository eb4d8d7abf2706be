package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/audit"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

// auditTimeout bounds a single best-effort audit write
const auditTimeout = 5 * time.Second

// ScoreResponse is the body of both scoring endpoints. Status is only set
// when the service is configured to expose it.
type ScoreResponse struct {
	Score  float64 `json:"score"`
	Status string  `json:"status,omitempty"`
}

// ResponseOptions shapes scoring responses
type ResponseOptions struct {
	// ExposeStatus adds the result status so callers can tell a dissimilar
	// pair from an image without a face.
	ExposeStatus bool
}

func newScoreResponse(result domain.Result, opts ResponseOptions) ScoreResponse {
	resp := ScoreResponse{Score: result.Value()}
	if opts.ExposeStatus {
		resp.Status = string(result.Status)
	}
	return resp
}

// Auditor records one event per request off the request path and keeps
// track of writes still in flight.
type Auditor struct {
	logger      audit.Logger
	errorLogger *slog.Logger
	pending     sync.WaitGroup
}

// NewAuditor creates an Auditor writing to logger. Write failures are
// reported on errorLogger.
func NewAuditor(logger audit.Logger, errorLogger *slog.Logger) *Auditor {
	return &Auditor{logger: logger, errorLogger: errorLogger}
}

// record logs the event asynchronously (best-effort)
func (a *Auditor) record(c *fiber.Ctx, service domain.Service, result domain.Result, err error, start time.Time) {
	if a == nil || a.logger == nil {
		return
	}

	event := audit.NewEvent(service, result, err, time.Since(start))
	// fiber reuses request buffers once the handler returns
	event.RequestID = utils.CopyString(middleware.GetRequestID(c))
	event.IPAddress = utils.CopyString(c.IP())
	event.UserAgent = utils.CopyString(c.Get(fiber.HeaderUserAgent))

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		if err := a.logger.Log(ctx, event); err != nil {
			a.errorLogger.Warn("failed to record audit event",
				"error", err,
				"request_id", event.RequestID,
				"service", event.Service,
			)
		}
	}()
}

// Wait blocks until every recorded event has been written or ctx is done.
func (a *Auditor) Wait(ctx context.Context) error {
	if a == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		a.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
