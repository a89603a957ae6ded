// Package storagetest opens migrated in-memory SQLite stores for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

var seq atomic.Int64

// NewStore returns a fresh, fully migrated in-memory store that is closed
// when the test ends. Each call gets its own database.
func NewStore(t testing.TB) *storage.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:reportai_test_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	store, err := storage.Open(context.Background(), "sqlite", dsn, storage.PoolConfig{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = storage.NewMigrator(store).Up(context.Background())
	require.NoError(t, err)
	return store
}
