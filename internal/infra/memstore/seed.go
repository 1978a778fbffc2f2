package memstore

import (
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedProducts returns the catalog the service starts with.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			ID:        uuid.MustParse("6f9619ff-8b86-4d11-b42d-00c04fc964ff"),
			Name:      "The Pragmatic Programmer",
			Category:  "Books",
			Summary:   "From journeyman to master.",
			ImageFile: "product-1.png",
			Price:     decimal.RequireFromString("39.99"),
			Currency:  domain.CurrencyUSD,
			CategoryInfo: domain.BooksCategory{
				NofPages: 352,
				Authors:  []string{"Andrew Hunt", "David Thomas"},
			},
		},
		{
			ID:        uuid.MustParse("1b4e28ba-2fa1-4d3b-a3f5-ef19b5a7633b"),
			Name:      "Dune",
			Category:  "Books",
			Summary:   "A desert planet and the spice that rules it.",
			ImageFile: "product-2.png",
			Price:     decimal.RequireFromString("12.50"),
			Currency:  domain.CurrencyGBP,
			CategoryInfo: domain.BooksCategory{
				NofPages: 412,
				Authors:  []string{"Frank Herbert"},
			},
		},
		{
			ID:           uuid.MustParse("c9bf9e57-1685-4c89-bafb-ff5af830be8a"),
			Name:         "Heat",
			Category:     "Movies",
			Summary:      "A crew of thieves and the detective chasing them.",
			ImageFile:    "product-3.png",
			Price:        decimal.RequireFromString("9.99"),
			Currency:     domain.CurrencyEUR,
			CategoryInfo: domain.MoviesCategory{NofMinutes: 170},
		},
		{
			ID:        uuid.MustParse("a8098c1a-f86e-41f7-94d1-9d3a57d0b7a1"),
			Name:      "Gift Card",
			Category:  "Misc",
			Summary:   "Spend it on anything.",
			ImageFile: "product-4.png",
			Price:     decimal.RequireFromString("25"),
			Currency:  domain.CurrencyUSD,
		},
	}
}

// SeedCarts returns Alice's cart holding one unit of the first product.
func SeedCarts(products []domain.Product) []domain.ShoppingCart {
	if len(products) == 0 {
		return nil
	}
	return []domain.ShoppingCart{{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		CustomerName: "Alice",
		Items:        []domain.ShoppingCartItem{domain.ItemFromProduct(products[0], 1)},
		Version:      domain.CartVersion{Number: 1},
	}}
}
