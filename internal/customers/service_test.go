package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotadesk/quotadesk/internal/platform/httpx"
)

type fakeRepo struct {
	byID   map[int64]Customer
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[int64]Customer{}, nextID: 1}
}

func (f *fakeRepo) List(_ context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range f.byID {
		if req.IsActive != nil && c.IsActive != *req.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return Customer{}, httpx.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) Create(_ context.Context, c Customer) (Customer, error) {
	c.ID = f.nextID
	c.IsActive = true
	f.nextID++
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, c Customer) error {
	if _, ok := f.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	c.ID = id
	f.byID[id] = c
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id int64) error {
	c, ok := f.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	c.IsActive = false
	f.byID[id] = c
	return nil
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name:  "Sharma Electricals",
		Phone: "9876543210",
		City:  "Pune",
	})
	require.NoError(t, err)

	city := "Mumbai"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCustomerRequest{City: &city})
	require.NoError(t, err)

	assert.Equal(t, "Mumbai", updated.City)
	assert.Equal(t, "Sharma Electricals", updated.Name)
	assert.Equal(t, "9876543210", updated.Phone)
}

func TestUpdateMissingCustomer(t *testing.T) {
	svc := NewService(newFakeRepo())

	name := "Nobody"
	_, err := svc.Update(context.Background(), 42, UpdateCustomerRequest{Name: &name})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeactivateHidesFromActiveList(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Old Shop"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), c.ID))

	active := true
	list, total, err := svc.List(context.Background(), ListCustomersRequest{IsActive: &active})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	// The record itself survives for quotations that reference it.
	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
