package db

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra/productjson"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(models))
	for _, m := range models {
		p, err := productFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id.String()).Error; err != nil {
		return nil, translate(err)
	}
	p, err := productFromModel(model)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p domain.Product) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model, err := productToModel(p)
	if err != nil {
		return err
	}
	model.CreatedAt = time.Now().UTC()
	return translate(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ProductRepository) Update(ctx context.Context, p domain.Product) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model, err := productToModel(p)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", model.ID).Updates(map[string]any{
		"name":          model.Name,
		"category":      model.Category,
		"summary":       model.Summary,
		"image_file":    model.ImageFile,
		"price":         model.Price,
		"currency":      model.Currency,
		"category_info": model.CategoryInfo,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&ProductModel{}, "id = ?", id.String())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func productToModel(p domain.Product) (ProductModel, error) {
	model := ProductModel{
		ID:        p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
		Summary:   p.Summary,
		ImageFile: p.ImageFile,
		Price:     p.Price,
		Currency:  string(p.Currency),
	}
	if p.CategoryInfo != nil {
		raw, err := productjson.EncodeCategory(p.CategoryInfo)
		if err != nil {
			return ProductModel{}, err
		}
		model.CategoryInfo = raw
	}
	return model, nil
}

func productFromModel(m ProductModel) (domain.Product, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %q: %w", m.ID, err)
	}
	currency, ok := domain.ParseCurrency(m.Currency)
	if !ok {
		currency = domain.DefaultCurrency
	}
	p := domain.Product{
		ID:        id,
		Name:      m.Name,
		Category:  m.Category,
		Summary:   m.Summary,
		ImageFile: m.ImageFile,
		Price:     m.Price,
		Currency:  currency,
	}
	if len(m.CategoryInfo) > 0 {
		category, err := productjson.DecodeCategory(m.CategoryInfo)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s category: %w", m.ID, err)
		}
		p.CategoryInfo = category
	}
	return p, nil
}

var _ usecase.ProductRepository = (*ProductRepository)(nil)
