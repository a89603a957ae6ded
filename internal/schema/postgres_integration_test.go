//go:build integration

package schema_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

func newPostgresStore(t *testing.T) *storage.Store {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("report_ai_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/report_ai_test?sslmode=disable", host, port.Port())
	store, err := storage.Open(ctx, "postgres", dsn, storage.PoolConfig{MaxOpenConns: 5, MaxIdleConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	status, err := storage.NewMigrator(store).Up(ctx)
	require.NoError(t, err)
	require.True(t, status.UpToDate)
	return store
}

func TestPostgres_SnapshotVersionRoundTrip(t *testing.T) {
	store := newPostgresStore(t)
	svc := schema.NewService(store, nil)
	ctx := context.Background()

	result, err := svc.ImportSnapshot(ctx, fixtureSnapshot(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Products)

	v, err := svc.SaveVersion(ctx, "baseline", "integration")
	require.NoError(t, err)

	_, err = svc.ImportSnapshot(ctx, &schema.Snapshot{
		Version:  schema.SnapshotVersion,
		Products: []schema.ProductDoc{{Name: "Search"}},
	}, true)
	require.NoError(t, err)

	restored, err := svc.RestoreVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, restored.Version.IsActive)

	snap, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Meta", snap.Products[0].Name)
	assert.Equal(t, fixtureSnapshot().Counts(), snap.Counts())
}
