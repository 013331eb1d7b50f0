package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/turismo-portal/internal/domain/product"
)

// ============ Test doubles ============

type fakeStore struct {
	products    map[string]product.Product
	listActives int
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: make(map[string]product.Product)}
}

func (f *fakeStore) ListActive(ctx context.Context) ([]product.Product, error) {
	f.listActives++
	var out []product.Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) List(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeStore) Create(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = *p
	return nil
}

func (f *fakeStore) Update(ctx context.Context, p *product.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeCache struct {
	active      []product.Product
	cached      bool
	invalidated int
}

func (f *fakeCache) GetActive(ctx context.Context) ([]product.Product, bool) {
	if !f.cached {
		return nil, false
	}
	return f.active, true
}

func (f *fakeCache) SetActive(ctx context.Context, products []product.Product) {
	f.active = products
	f.cached = true
}

func (f *fakeCache) Invalidate(ctx context.Context) {
	f.active = nil
	f.cached = false
	f.invalidated++
}

func validTour() *product.Product {
	return &product.Product{
		Code:   "CTY-001",
		Name:   "City Tour",
		Price:  15000,
		Active: true,
	}
}

// ============ Tests ============

func TestService_Create(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	p := validTour()
	require.NoError(t, svc.Create(context.Background(), p))

	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "City Tour", stored.Name)
}

func TestService_Create_Invalid(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	tests := []struct {
		name string
		mod  func(*product.Product)
		want error
	}{
		{"missing code", func(p *product.Product) { p.Code = "" }, product.ErrCodeRequired},
		{"missing name", func(p *product.Product) { p.Name = "" }, product.ErrNameRequired},
		{"negative price", func(p *product.Product) { p.Price = -1 }, product.ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validTour()
			tt.mod(p)
			assert.ErrorIs(t, svc.Create(context.Background(), p), tt.want)
		})
	}
}

func TestService_Update(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	p := validTour()
	require.NoError(t, svc.Create(context.Background(), p))
	created := p.UpdatedAt

	p.Name = "City Tour Deluxe"
	require.NoError(t, svc.Update(context.Background(), p))

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "City Tour Deluxe", stored.Name)
	assert.True(t, !stored.UpdatedAt.Before(created))
}

func TestService_Update_Missing(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	p := validTour()
	p.ID = "missing"
	assert.ErrorIs(t, svc.Update(context.Background(), p), product.ErrProductNotFound)
}

func TestService_Delete(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	p := validTour()
	require.NoError(t, svc.Create(context.Background(), p))
	require.NoError(t, svc.Delete(context.Background(), p.ID))

	_, err := svc.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), product.ErrProductNotFound)
}

func TestService_ListActive_FiltersInactive(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	active := validTour()
	require.NoError(t, svc.Create(context.Background(), active))

	inactive := validTour()
	inactive.Code = "CTY-002"
	inactive.Active = false
	require.NoError(t, svc.Create(context.Background(), inactive))

	products, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, active.ID, products[0].ID)
}

func TestService_ListActive_UsesCache(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	svc := NewService(store, cache)

	p := validTour()
	require.NoError(t, svc.Create(context.Background(), p))

	// First read fills the cache, second is served from it
	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	_, err = svc.ListActive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.listActives)
	assert.True(t, cache.cached)
}

func TestService_WritesInvalidateCache(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	svc := NewService(store, cache)

	p := validTour()
	require.NoError(t, svc.Create(context.Background(), p))
	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.True(t, cache.cached)

	p.Price = 20000
	require.NoError(t, svc.Update(context.Background(), p))
	assert.False(t, cache.cached)

	// Next read repopulates from the store
	products, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 20000.0, products[0].Price)
}

func TestService_CacheErrorsDoNotLeak(t *testing.T) {
	// A nil cache means every read hits the store
	store := newFakeStore()
	svc := NewService(store, nil)

	require.NoError(t, svc.Create(context.Background(), validTour()))

	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	_, err = svc.ListActive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, store.listActives)
}

func TestService_Get_Missing(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	_, err := svc.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, product.ErrProductNotFound))
}
