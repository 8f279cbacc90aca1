package products

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotadesk/quotadesk/internal/platform/cache"
)

type fakeRepo struct {
	Repository
	getCalls int
	product  Product
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Product, error) {
	f.getCalls++
	return f.product, nil
}

func TestGetServesSecondLookupFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &fakeRepo{product: Product{ID: 7, Code: "CF-100", Name: "Ceiling Fan", MRP: 2500}}
	svc := NewService(repo, cache.NewJSONCache(client, "product", time.Minute))

	first, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.getCalls, "second read must come from the cache")
}

func TestGetWorksWithoutCache(t *testing.T) {
	repo := &fakeRepo{product: Product{ID: 3, Code: "WS-20"}}
	svc := NewService(repo, cache.NewJSONCache(nil, "product", time.Minute))

	p, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "WS-20", p.Code)
	assert.Equal(t, 1, repo.getCalls)
}

func TestProductHelpers(t *testing.T) {
	p := Product{
		MRP:    1000,
		Images: []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
		Meta:   []MetaDetail{{Slug: "hsn", Value: "8414"}, {Slug: "brand", Value: "Orbit"}},
	}
	assert.Equal(t, "https://cdn.example.com/a.png", p.PrimaryImage())
	assert.Equal(t, "8414", p.HSN())
	assert.Equal(t, "", p.MetaValue("warranty"))
	assert.Equal(t, 1000.0, p.EffectivePrice(), "MRP stands in when no selling price is set")

	p.Price = 850
	assert.Equal(t, 850.0, p.EffectivePrice())

	assert.Equal(t, "", Product{}.PrimaryImage())
}
