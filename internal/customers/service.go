package customers

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if req.Limit == 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	return s.repo.Create(ctx, Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		GSTIN:   req.GSTIN,
	})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (Customer, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.City != nil {
		existing.City = *req.City
	}
	if req.GSTIN != nil {
		existing.GSTIN = *req.GSTIN
	}

	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
