// Package audit records one event per scoring request. Image references,
// pixels and embeddings are never part of an event.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

// Event represents the audit record of one scoring request
type Event struct {
	ID        uuid.UUID           `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	RequestID string              `json:"request_id,omitempty"`
	Service   domain.Service      `json:"service"`
	Status    domain.ResultStatus `json:"status"`
	Method    domain.ScoreMethod  `json:"method,omitempty"`
	Score     float64             `json:"score"`
	Latency   time.Duration       `json:"-"`
	Error     string              `json:"error,omitempty"`
	IPAddress string              `json:"ip_address,omitempty"`
	UserAgent string              `json:"user_agent,omitempty"`
}

// NewEvent builds the event for a finished request. A non-nil err marks the
// event as failed and records the error code when it is an AppError.
func NewEvent(service domain.Service, result domain.Result, err error, latency time.Duration) Event {
	event := Event{
		Service: service,
		Status:  result.Status,
		Method:  result.Method,
		Score:   result.Value(),
		Latency: latency,
	}

	if err != nil {
		event.Status = domain.StatusError
		event.Method = ""
		event.Score = 0

		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			event.Error = appErr.Code
		} else {
			event.Error = err.Error()
		}
	}

	return event
}

// Success reports whether the request produced a response body
func (e Event) Success() bool {
	return e.Status != domain.StatusError
}

// Inference converts the event to its persisted form
func (e Event) Inference() *domain.Inference {
	return &domain.Inference{
		ID:        e.ID,
		RequestID: e.RequestID,
		Service:   e.Service,
		Status:    e.Status,
		Method:    e.Method,
		Score:     e.Score,
		LatencyMs: e.Latency.Milliseconds(),
		Error:     e.Error,
		CreatedAt: e.Timestamp,
	}
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

func (e *Event) fill() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	event.fill()

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("service", string(event.Service)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("request_id", event.RequestID),
		slog.String("service", string(event.Service)),
		slog.String("status", string(event.Status)),
		slog.Float64("score", event.Score),
		slog.Int64("latency_ms", event.Latency.Milliseconds()),
		slog.Bool("success", event.Success()),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// InferenceStore persists audit events
type InferenceStore interface {
	Create(ctx context.Context, inference *domain.Inference) error
}

// StoreLogger writes events to the inference audit table
type StoreLogger struct {
	store InferenceStore
}

// NewStoreLogger creates an audit logger backed by store
func NewStoreLogger(store InferenceStore) *StoreLogger {
	return &StoreLogger{store: store}
}

// Log inserts the event
func (l *StoreLogger) Log(ctx context.Context, event Event) error {
	event.fill()
	return l.store.Create(ctx, event.Inference())
}

// MultiLogger fans an event out to several loggers
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a Logger writing to every logger in order. Every
// logger sees the same event ID.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log records the event with every logger and joins their errors
func (l *MultiLogger) Log(ctx context.Context, event Event) error {
	event.fill()

	var errs []error
	for _, logger := range l.loggers {
		if err := logger.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
