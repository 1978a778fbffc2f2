package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) List(ctx context.Context) ([]domain.ShoppingCart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CartModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ShoppingCart, 0, len(models))
	for _, m := range models {
		cart, err := cartFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, cart)
	}
	return out, nil
}

func (r *CartRepository) Get(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CartModel
	if err := r.db.WithContext(ctx).First(&model, "customer_id = ?", customerID.String()).Error; err != nil {
		return nil, translate(err)
	}
	cart, err := cartFromModel(model)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) Create(ctx context.Context, cart domain.ShoppingCart) error {
	if r.db == nil {
		return errDBUnavailable
	}
	items, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	model := CartModel{
		ID:           cart.ID.String(),
		CustomerID:   cart.CustomerID.String(),
		CustomerName: cart.CustomerName,
		Items:        items,
		Version:      int(cart.Version.Number),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

// Update bumps the version in the same statement that replaces the cart, so
// concurrent writers never observe the same version twice.
func (r *CartRepository) Update(ctx context.Context, cart domain.ShoppingCart) (domain.ShoppingCart, error) {
	if r.db == nil {
		return domain.ShoppingCart{}, errDBUnavailable
	}
	items, err := marshalItems(cart.Items)
	if err != nil {
		return domain.ShoppingCart{}, err
	}
	var row struct {
		ID      string
		Version int
	}
	res := r.db.WithContext(ctx).Raw(
		`UPDATE shopping_carts
		 SET customer_name = ?, items = ?, version = (version + 1) % 65536, updated_at = ?
		 WHERE customer_id = ?
		 RETURNING id, version`,
		cart.CustomerName,
		items,
		time.Now().UTC(),
		cart.CustomerID.String(),
	).Scan(&row)
	if res.Error != nil {
		return domain.ShoppingCart{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ShoppingCart{}, domain.ErrNotFound
	}
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.ShoppingCart{}, err
	}
	out := cart.Clone()
	out.ID = id
	out.Version = domain.CartVersion{Number: uint16(row.Version)}
	return out, nil
}

func (r *CartRepository) Delete(ctx context.Context, customerID uuid.UUID) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&CartModel{}, "customer_id = ?", customerID.String())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func marshalItems(items []domain.ShoppingCartItem) ([]byte, error) {
	if items == nil {
		items = []domain.ShoppingCartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart items: %w", err)
	}
	return raw, nil
}

func cartFromModel(m CartModel) (domain.ShoppingCart, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.ShoppingCart{}, fmt.Errorf("cart %q: %w", m.ID, err)
	}
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return domain.ShoppingCart{}, fmt.Errorf("cart %q customer: %w", m.ID, err)
	}
	var items []domain.ShoppingCartItem
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return domain.ShoppingCart{}, fmt.Errorf("cart %q items: %w", m.ID, err)
		}
	}
	return domain.ShoppingCart{
		ID:           id,
		CustomerID:   customerID,
		CustomerName: m.CustomerName,
		Items:        items,
		Version:      domain.CartVersion{Number: uint16(m.Version)},
	}, nil
}

var _ usecase.CartRepository = (*CartRepository)(nil)
