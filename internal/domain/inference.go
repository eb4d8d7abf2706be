package domain

import (
	"time"

	"github.com/google/uuid"
)

// Service identifies which inference endpoint produced a record.
type Service string

const (
	ServiceFaceMatch Service = "face_match"
	ServiceLiveness  Service = "liveness"
)

// Inference is the audit record of one scoring request. Image references
// and embeddings are never stored.
type Inference struct {
	ID        uuid.UUID    `json:"id"`
	RequestID string       `json:"request_id,omitempty"`
	Service   Service      `json:"service"`
	Status    ResultStatus `json:"status"`
	Method    ScoreMethod  `json:"method,omitempty"`
	Score     float64      `json:"score"`
	LatencyMs int64        `json:"latency_ms"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// StatusError marks an audit record of a request that failed. It is never
// returned as a Result status.
const StatusError ResultStatus = "error"

// InferenceSummary aggregates audit records of one service and status
type InferenceSummary struct {
	Service      Service      `json:"service"`
	Status       ResultStatus `json:"status"`
	Count        int64        `json:"count"`
	AvgScore     float64      `json:"avg_score"`
	AvgLatencyMs float64      `json:"avg_latency_ms"`
	P99LatencyMs float64      `json:"p99_latency_ms"`
}
