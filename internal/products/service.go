package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/quotadesk/quotadesk/internal/platform/cache"
)

// Service layers the product detail cache over the repository. Exports hit
// product lookups in bursts, so detail reads go through Redis; writes
// invalidate by overwriting the entry.
type Service struct {
	repo  Repository
	cache *cache.JSONCache
}

func NewService(repo Repository, c *cache.JSONCache) *Service {
	return &Service{repo: repo, cache: c}
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	if req.Limit == 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	key := strconv.FormatInt(id, 10)
	var p Product
	if err := s.cache.Get(ctx, key, &p); err == nil {
		return p, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return Product{}, err
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Set(ctx, key, p)
	return p, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (Product, error) {
	var p Product
	if err := s.cache.Get(ctx, "code:"+code, &p); err == nil {
		return p, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return Product{}, err
	}

	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Set(ctx, "code:"+code, p)
	return p, nil
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	p, err := s.repo.Create(ctx, Product{
		Code:   req.Code,
		Name:   req.Name,
		MRP:    req.MRP,
		Price:  req.Price,
		Unit:   req.Unit,
		Images: req.Images,
		Meta:   req.Meta,
	})
	if err != nil {
		return Product{}, err
	}
	s.refreshCache(ctx, p)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.MRP != nil {
		existing.MRP = *req.MRP
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	if req.Images != nil {
		existing.Images = *req.Images
	}
	if req.Meta != nil {
		existing.Meta = *req.Meta
	}

	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.refreshCache(ctx, updated)
	return updated, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) refreshCache(ctx context.Context, p Product) {
	_ = s.cache.Set(ctx, strconv.FormatInt(p.ID, 10), p)
	_ = s.cache.Set(ctx, "code:"+p.Code, p)
}
