package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

const maxListLimit = 1000

type InferenceRepository struct {
	pool PgxPool
}

func NewInferenceRepository(pool PgxPool) *InferenceRepository {
	return &InferenceRepository{pool: pool}
}

func (r *InferenceRepository) Create(ctx context.Context, inf *domain.Inference) error {
	query := `
		INSERT INTO inferences (id, request_id, service, status, method, score, latency_ms, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	if inf.ID == uuid.Nil {
		inf.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		inf.ID,
		inf.RequestID,
		string(inf.Service),
		string(inf.Status),
		string(inf.Method),
		inf.Score,
		inf.LatencyMs,
		inf.Error,
	).Scan(&inf.CreatedAt)

	if err != nil {
		return fmt.Errorf("create inference: %w", err)
	}

	return nil
}

// ListRecent returns the newest inferences first. An empty service lists
// every service.
func (r *InferenceRepository) ListRecent(ctx context.Context, service domain.Service, limit int) ([]domain.Inference, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, request_id, service, status, method, score, latency_ms, error, created_at
		FROM inferences
		WHERE ($1::text = '' OR service = $1::text)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(service), limit)
	if err != nil {
		return nil, fmt.Errorf("list inferences: %w", err)
	}
	defer rows.Close()

	inferences := make([]domain.Inference, 0)
	for rows.Next() {
		var (
			inf                 domain.Inference
			svc, status, method string
		)
		if err := rows.Scan(
			&inf.ID,
			&inf.RequestID,
			&svc,
			&status,
			&method,
			&inf.Score,
			&inf.LatencyMs,
			&inf.Error,
			&inf.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inference: %w", err)
		}
		inf.Service = domain.Service(svc)
		inf.Status = domain.ResultStatus(status)
		inf.Method = domain.ScoreMethod(method)
		inferences = append(inferences, inf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inferences: %w", err)
	}

	return inferences, nil
}

// Summarize aggregates inferences created at or after since, grouped by
// service and status.
func (r *InferenceRepository) Summarize(ctx context.Context, since time.Time) ([]domain.InferenceSummary, error) {
	query := `
		SELECT service, status, COUNT(*),
		       COALESCE(AVG(score), 0),
		       COALESCE(AVG(latency_ms), 0),
		       COALESCE(PERCENTILE_CONT(0.99) WITHIN GROUP (ORDER BY latency_ms), 0)
		FROM inferences
		WHERE created_at >= $1
		GROUP BY service, status
		ORDER BY service, status
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("summarize inferences: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.InferenceSummary, 0)
	for rows.Next() {
		var (
			s           domain.InferenceSummary
			svc, status string
		)
		if err := rows.Scan(&svc, &status, &s.Count, &s.AvgScore, &s.AvgLatencyMs, &s.P99LatencyMs); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.Service = domain.Service(svc)
		s.Status = domain.ResultStatus(status)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return summaries, nil
}

// DeleteOlderThan removes inferences older than maxAge and returns how many
// rows were deleted.
func (r *InferenceRepository) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := `DELETE FROM inferences WHERE created_at < $1`

	tag, err := r.pool.Exec(ctx, query, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("delete old inferences: %w", err)
	}

	return tag.RowsAffected(), nil
}
