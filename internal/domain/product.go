package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"

	DefaultCurrency = CurrencyUSD
)

var currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY}

func ParseCurrency(s string) (Currency, bool) {
	for _, c := range currencies {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category"`
	Summary      string          `json:"summary"`
	ImageFile    string          `json:"imageFile"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	Currency     Currency        `json:"currency"`
	CategoryInfo Category        `json:"categoryInfo,omitempty"`
}

func (p Product) Clone() Product {
	out := p
	if p.CategoryInfo != nil {
		out.CategoryInfo = p.CategoryInfo.clone()
	}
	return out
}

// CategoryType is the discriminator written as "categoryType".
type CategoryType string

const (
	CategoryBooks  CategoryType = "Books"
	CategoryMovies CategoryType = "Movies"
)

// Category is the closed set of category variants a product can carry.
type Category interface {
	CategoryType() CategoryType
	clone() Category
}

type BooksCategory struct {
	NofPages uint     `json:"nofPages"`
	Authors  []string `json:"authors" validate:"required,min=1"`
}

func (BooksCategory) CategoryType() CategoryType { return CategoryBooks }

func (b BooksCategory) clone() Category {
	out := b
	if b.Authors != nil {
		out.Authors = append([]string(nil), b.Authors...)
	}
	return out
}

func (b BooksCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CategoryType CategoryType `json:"categoryType"`
		NofPages     uint         `json:"nofPages"`
		Authors      []string     `json:"authors"`
	}{CategoryBooks, b.NofPages, b.Authors})
}

type MoviesCategory struct {
	NofMinutes uint `json:"nofMinutes"`
}

func (MoviesCategory) CategoryType() CategoryType { return CategoryMovies }

func (m MoviesCategory) clone() Category { return m }

func (m MoviesCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CategoryType CategoryType `json:"categoryType"`
		NofMinutes   uint         `json:"nofMinutes"`
	}{CategoryMovies, m.NofMinutes})
}

// ProductQuery narrows a catalog listing. Empty fields match everything.
type ProductQuery struct {
	Category string
	Name     string
	Filter   string
}

func (q ProductQuery) Matches(p Product) bool {
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Name != "" && !strings.EqualFold(p.Name, q.Name) {
		return false
	}
	return true
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}
