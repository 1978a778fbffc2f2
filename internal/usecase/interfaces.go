package usecase

import (
	"context"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) error
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CartRepository interface {
	List(ctx context.Context) ([]domain.ShoppingCart, error)
	Get(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error)
	Create(ctx context.Context, cart domain.ShoppingCart) error
	// Update replaces the stored cart and returns it with its version bumped.
	Update(ctx context.Context, cart domain.ShoppingCart) (domain.ShoppingCart, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
}

// ProductMatcher is a compiled catalog filter expression.
type ProductMatcher interface {
	Match(p domain.Product) (bool, error)
}

type FilterCompiler interface {
	Compile(expression string) (ProductMatcher, error)
}
