package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryClient_SetGetDelete(t *testing.T) {
	c := NewMemoryClient(10, time.Hour)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "settings:grouped", []byte("v1"), time.Minute))
	got, err := c.Get(ctx, "settings:grouped")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Delete(ctx, "settings:grouped"))
	_, err = c.Get(ctx, "settings:grouped")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_ExpiredEntryIsMiss(t *testing.T) {
	c := NewMemoryClient(10, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	c.sweep(time.Now())
	c.mu.RLock()
	assert.Empty(t, c.data)
	c.mu.RUnlock()
}

func TestMemoryClient_DeleteByPrefix(t *testing.T) {
	c := NewMemoryClient(10, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, Key("settings", "a"), []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, Key("settings", "b"), []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, Key("models"), []byte("3"), time.Minute))

	require.NoError(t, c.DeleteByPrefix(ctx, "settings:"))

	_, err := c.Get(ctx, "settings:a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "models")
	assert.NoError(t, err)
}

func TestMemoryClient_EvictsWhenFull(t *testing.T) {
	c := NewMemoryClient(2, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Hour))

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryClient(10, time.Hour)
	defer c.Close()
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, c, "p", payload{Name: "meta"}, time.Minute))

	var out payload
	require.NoError(t, GetJSON(ctx, c, "p", &out))
	assert.Equal(t, "meta", out.Name)

	assert.ErrorIs(t, GetJSON(ctx, c, "absent", &out), ErrCacheMiss)
}

func TestMemoryClient_CloseIsIdempotent(t *testing.T) {
	c := NewMemoryClient(1, time.Millisecond)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
