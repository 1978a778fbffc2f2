package db

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/config"
	"storefront/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

// NewStore opens Postgres. Without POSTGRES_DSN it returns a store with a nil
// DB and callers fall back to the in-memory repositories.
func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		slog.Info("POSTGRES_DSN not set; using in-memory repositories")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Store{DB: gdb}, nil
}

func (s *Store) Enabled() bool {
	return s != nil && s.DB != nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if !s.Enabled() {
		return errDBUnavailable
	}
	if err := s.DB.WithContext(ctx).AutoMigrate(&ProductModel{}, &CartModel{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the starting catalog and carts into an empty database.
func (s *Store) SeedIfEmpty(ctx context.Context, products []domain.Product, carts []domain.ShoppingCart) error {
	if !s.Enabled() {
		return errDBUnavailable
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&ProductModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := NewProductRepository(tx)
		for _, p := range products {
			if err := productRepo.Create(ctx, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
		cartRepo := NewCartRepository(tx)
		for _, c := range carts {
			if err := cartRepo.Create(ctx, c); err != nil {
				return fmt.Errorf("seed cart %s: %w", c.CustomerID, err)
			}
		}
		return nil
	})
}
