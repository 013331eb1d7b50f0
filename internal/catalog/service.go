package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/turismo-portal/internal/domain/product"
)

// Store is the persistence surface the catalog needs.
type Store interface {
	ListActive(ctx context.Context) ([]product.Product, error)
	List(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, p *product.Product) error
	Delete(ctx context.Context, id string) error
}

// ListCache caches the storefront listing between admin writes.
type ListCache interface {
	GetActive(ctx context.Context) ([]product.Product, bool)
	SetActive(ctx context.Context, products []product.Product)
	Invalidate(ctx context.Context)
}

// Service is the product catalog: storefront reads on one side, admin CRUD
// on the other. cache may be nil.
type Service struct {
	store Store
	cache ListCache
}

func NewService(store Store, cache ListCache) *Service {
	return &Service{store: store, cache: cache}
}

// ListActive returns the products shown to buyers.
func (s *Service) ListActive(ctx context.Context) ([]product.Product, error) {
	if s.cache != nil {
		if products, ok := s.cache.GetActive(ctx); ok {
			return products, nil
		}
	}
	products, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetActive(ctx, products)
	}
	return products, nil
}

// List returns every product for the admin surface.
func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	return s.store.Get(ctx, id)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := time.Now()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update validates and stores changes to an existing product.
func (s *Service) Update(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
