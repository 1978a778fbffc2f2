package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

type CatalogService struct {
	Products ProductRepository
	Filters  FilterCompiler
}

func NewCatalogService(products ProductRepository, filters FilterCompiler) *CatalogService {
	return &CatalogService{Products: products, Filters: filters}
}

func (s *CatalogService) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	if s == nil || s.Products == nil {
		return nil, errors.New("product repository is required")
	}
	var matcher ProductMatcher
	if expression := strings.TrimSpace(q.Filter); expression != "" {
		if s.Filters == nil {
			return nil, fmt.Errorf("%w: filtering is not enabled", domain.ErrInvalidFilter)
		}
		m, err := s.Filters.Compile(expression)
		if err != nil {
			return nil, err
		}
		matcher = m
	}
	all, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if !q.Matches(p) {
			continue
		}
		if matcher != nil {
			ok, err := matcher.Match(p)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.Products.Get(ctx, id)
}

// Create stores p, assigning an id when the caller did not supply one.
func (s *CatalogService) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == uuid.Nil {
		verr := domain.NewValidationError()
		verr.Add("id", "The id field is required.")
		return domain.Product{}, verr
	}
	if err := s.Products.Update(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Products.Delete(ctx, id)
}
