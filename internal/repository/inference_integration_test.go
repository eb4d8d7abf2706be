//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/database"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "kycscore_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/kycscore_test?sslmode=disable", host, port.Port())

	sqlDB, err := database.OpenSQL(ctx, connStr)
	require.NoError(t, err)

	migrator, err := database.NewMigrator(sqlDB, "kycscore_test")
	require.NoError(t, err)
	require.NoError(t, migrator.Up())

	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, migrator.Close())

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(connStr))
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestInferenceRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewInferenceRepository(pool)

	records := []*domain.Inference{
		{RequestID: "a", Service: domain.ServiceFaceMatch, Status: domain.StatusScored, Method: domain.MethodEmbedding, Score: 0.8123, LatencyMs: 120},
		{RequestID: "b", Service: domain.ServiceLiveness, Status: domain.StatusScored, Method: domain.MethodHeuristic, Score: 0.25, LatencyMs: 15},
		{RequestID: "c", Service: domain.ServiceFaceMatch, Status: domain.StatusError, Error: "IMAGE_FETCH_FAILED", LatencyMs: 10003},
	}
	for _, r := range records {
		require.NoError(t, repo.Create(ctx, r))
		assert.False(t, r.CreatedAt.IsZero())
		time.Sleep(5 * time.Millisecond)
	}

	faceMatch, err := repo.ListRecent(ctx, domain.ServiceFaceMatch, 10)
	require.NoError(t, err)
	require.Len(t, faceMatch, 2)
	assert.Equal(t, "c", faceMatch[0].RequestID)
	assert.Equal(t, domain.StatusError, faceMatch[0].Status)
	assert.Equal(t, "a", faceMatch[1].RequestID)
	assert.InDelta(t, 0.8123, faceMatch[1].Score, 1e-9)

	all, err := repo.ListRecent(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	summaries, err := repo.Summarize(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, domain.ServiceFaceMatch, summaries[0].Service)
	assert.Equal(t, domain.StatusError, summaries[0].Status)
	assert.Equal(t, int64(1), summaries[0].Count)

	deleted, err := repo.DeleteOlderThan(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = repo.DeleteOlderThan(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = pool.Exec(ctx, `INSERT INTO inferences (id, service, status) VALUES (gen_random_uuid(), 'ocr', 'scored')`)
	assert.Error(t, err, "unknown services are rejected by the schema")
}
