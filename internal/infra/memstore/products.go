// Package memstore keeps products and carts in process memory. Every read
// returns copies, so callers never alias stored slices.
package memstore

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/google/uuid"
)

type ProductStore struct {
	mu       sync.RWMutex
	order    []uuid.UUID
	products map[uuid.UUID]domain.Product
}

func NewProductStore(seed ...domain.Product) *ProductStore {
	s := &ProductStore{products: make(map[uuid.UUID]domain.Product, len(seed))}
	for _, p := range seed {
		s.order = append(s.order, p.ID)
		s.products[p.ID] = p.Clone()
	}
	return s
}

func (s *ProductStore) List(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id].Clone())
	}
	return out, nil
}

func (s *ProductStore) Get(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (s *ProductStore) Create(_ context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return domain.ErrConflict
	}
	s.order = append(s.order, p.ID)
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *ProductStore) Update(_ context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ usecase.ProductRepository = (*ProductStore)(nil)
