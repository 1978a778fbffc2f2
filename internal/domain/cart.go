package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartVersion struct {
	Number uint16 `json:"number"`
}

type ShoppingCartItem struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     uint16          `json:"quantity"`
	ImageFile    string          `json:"imageFile"`
}

type ShoppingCart struct {
	ID           uuid.UUID          `json:"id"`
	CustomerID   uuid.UUID          `json:"customerId"`
	CustomerName string             `json:"customerName"`
	Items        []ShoppingCartItem `json:"items"`
	Version      CartVersion        `json:"version"`
}

func (c ShoppingCart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.ProductPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c ShoppingCart) Clone() ShoppingCart {
	out := c
	out.Items = append([]ShoppingCartItem{}, c.Items...)
	return out
}

func (c ShoppingCart) MarshalJSON() ([]byte, error) {
	type plain ShoppingCart
	items := c.Items
	if items == nil {
		items = []ShoppingCartItem{}
	}
	p := plain(c)
	p.Items = items
	return json.Marshal(struct {
		plain
		TotalPrice decimal.Decimal `json:"totalPrice"`
	}{p, c.TotalPrice()})
}

// ItemFromProduct builds a cart line priced at the product's current price.
func ItemFromProduct(p Product, quantity uint16) ShoppingCartItem {
	return ShoppingCartItem{
		ID:           uuid.New(),
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductPrice: p.Price,
		Quantity:     quantity,
		ImageFile:    p.ImageFile,
	}
}
