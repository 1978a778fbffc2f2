package memstore

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/google/uuid"
)

type CartStore struct {
	mu    sync.RWMutex
	carts []domain.ShoppingCart
}

func NewCartStore(seed ...domain.ShoppingCart) *CartStore {
	s := &CartStore{}
	for _, c := range seed {
		s.carts = append(s.carts, c.Clone())
	}
	return s
}

func (s *CartStore) List(_ context.Context) ([]domain.ShoppingCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ShoppingCart, 0, len(s.carts))
	for _, c := range s.carts {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *CartStore) Get(_ context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(customerID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	out := s.carts[i].Clone()
	return &out, nil
}

func (s *CartStore) Create(_ context.Context, cart domain.ShoppingCart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(cart.CustomerID) >= 0 {
		return domain.ErrConflict
	}
	s.carts = append(s.carts, cart.Clone())
	return nil
}

func (s *CartStore) Update(_ context.Context, cart domain.ShoppingCart) (domain.ShoppingCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(cart.CustomerID)
	if i < 0 {
		return domain.ShoppingCart{}, domain.ErrNotFound
	}
	stored := cart.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = s.carts[i].ID
	}
	stored.Version.Number = s.carts[i].Version.Number + 1
	s.carts[i] = stored
	return stored.Clone(), nil
}

func (s *CartStore) Delete(_ context.Context, customerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(customerID)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.carts = append(s.carts[:i], s.carts[i+1:]...)
	return nil
}

func (s *CartStore) indexOf(customerID uuid.UUID) int {
	for i, c := range s.carts {
		if c.CustomerID == customerID {
			return i
		}
	}
	return -1
}

var _ usecase.CartRepository = (*CartStore)(nil)
