package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by repositories. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InferenceRepositoryInterface defines operations for the inference audit trail
type InferenceRepositoryInterface interface {
	Create(ctx context.Context, inference *domain.Inference) error
	ListRecent(ctx context.Context, service domain.Service, limit int) ([]domain.Inference, error)
	Summarize(ctx context.Context, since time.Time) ([]domain.InferenceSummary, error)
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

var _ InferenceRepositoryInterface = (*InferenceRepository)(nil)
