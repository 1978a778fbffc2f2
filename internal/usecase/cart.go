package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type CartService struct {
	Carts CartRepository
}

func NewCartService(carts CartRepository) *CartService {
	return &CartService{Carts: carts}
}

func (s *CartService) List(ctx context.Context) ([]domain.ShoppingCart, error) {
	if s == nil || s.Carts == nil {
		return nil, errors.New("cart repository is required")
	}
	return s.Carts.List(ctx)
}

func (s *CartService) Get(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	return s.Carts.Get(ctx, customerID)
}

// Create stores a new cart at version 1. A customer holds at most one cart.
func (s *CartService) Create(ctx context.Context, cart domain.ShoppingCart) (domain.ShoppingCart, error) {
	if verr := validateCart(cart); verr != nil {
		return domain.ShoppingCart{}, verr
	}
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	for i := range cart.Items {
		if cart.Items[i].ID == uuid.Nil {
			cart.Items[i].ID = uuid.New()
		}
	}
	cart.Version = domain.CartVersion{Number: 1}
	if err := s.Carts.Create(ctx, cart); err != nil {
		return domain.ShoppingCart{}, err
	}
	return cart, nil
}

func (s *CartService) Update(ctx context.Context, cart domain.ShoppingCart) (domain.ShoppingCart, error) {
	if verr := validateCart(cart); verr != nil {
		return domain.ShoppingCart{}, verr
	}
	return s.Carts.Update(ctx, cart)
}

func (s *CartService) Delete(ctx context.Context, customerID uuid.UUID) error {
	return s.Carts.Delete(ctx, customerID)
}

// Checkout closes the customer's cart. It reports false when there is no
// cart or the cart is empty.
func (s *CartService) Checkout(ctx context.Context, customerID uuid.UUID) (bool, error) {
	cart, err := s.Carts.Get(ctx, customerID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(cart.Items) == 0 {
		return false, nil
	}
	if err := s.Carts.Delete(ctx, customerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validateCart(cart domain.ShoppingCart) *domain.ValidationError {
	verr := domain.NewValidationError()
	if cart.CustomerID == uuid.Nil {
		verr.Add("customerId", "The customerId field is required.")
	}
	for _, item := range cart.Items {
		if item.Quantity == 0 {
			verr.Add("items.quantity", "The field quantity must be greater than 0.")
			break
		}
		if item.ProductPrice.IsNegative() {
			verr.Add("items.productPrice", "The field productPrice must be greater than or equal to 0.")
			break
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}
