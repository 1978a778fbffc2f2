package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductModel struct {
	ID           string          `gorm:"type:uuid;primaryKey"`
	Name         string          `gorm:"index;not null"`
	Category     string          `gorm:"index"`
	Summary      string
	ImageFile    string
	Price        decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Currency     string          `gorm:"type:char(3);not null"`
	CategoryInfo []byte          `gorm:"type:jsonb"`
	CreatedAt    time.Time       `gorm:"not null"`
}

func (ProductModel) TableName() string { return "products" }

type CartModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	CustomerID   string    `gorm:"type:uuid;uniqueIndex;not null"`
	CustomerName string
	Items        []byte    `gorm:"type:jsonb;not null"`
	Version      int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (CartModel) TableName() string { return "shopping_carts" }
