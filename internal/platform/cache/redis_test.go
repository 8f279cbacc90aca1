package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detail struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
}

func newTestCache(t *testing.T) *JSONCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJSONCache(client, "products", time.Minute)
}

func TestJSONCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "p1", detail{ProductID: "p1", Name: "Basin Mixer"}))

	var got detail
	require.NoError(t, c.Get(ctx, "p1", &got))
	assert.Equal(t, "Basin Mixer", got.Name)
}

func TestJSONCacheMiss(t *testing.T) {
	c := newTestCache(t)

	var got detail
	err := c.Get(context.Background(), "absent", &got)
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestJSONCacheNilClientDisabled(t *testing.T) {
	c := NewJSONCache(nil, "products", time.Minute)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "p1", detail{}))
	var got detail
	assert.True(t, errors.Is(c.Get(ctx, "p1", &got), ErrMiss))
}
