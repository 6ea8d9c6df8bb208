package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fulfillment is how a cart or order line reaches the customer.
type Fulfillment string

const (
	Delivery   Fulfillment = "delivery"
	Collection Fulfillment = "collection"
)

func (f Fulfillment) Valid() bool { return f == Delivery || f == Collection }

type Product struct {
	ID          string      `json:"id"`
	CategoryID  string      `json:"category_id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Brand       string      `json:"brand,omitempty"`
	Description string      `json:"description,omitempty"`
	ImageKey    string      `json:"-"`
	ImageURL    string      `json:"image_url,omitempty"`
	Inventory   []Inventory `json:"inventory,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Inventory is one purchasable variant of a product. Held units are
// reserved by unpaid pre-orders and are not available to other carts.
type Inventory struct {
	ID                 string              `json:"id"`
	ProductID          string              `json:"product_id"`
	SKU                string              `json:"sku"`
	Stock              int                 `json:"stock"`
	Held               int                 `json:"held"`
	Price              decimal.Decimal     `json:"price"`
	SalePrice          decimal.NullDecimal `json:"sale_price"`
	DeliveryEligible   bool                `json:"delivery_eligible"`
	CollectionEligible bool                `json:"collection_eligible"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func (i Inventory) Available() int {
	if n := i.Stock - i.Held; n > 0 {
		return n
	}
	return 0
}

// UnitPrice is the sale price when set and lower than the list price.
func (i Inventory) UnitPrice() decimal.Decimal {
	if i.SalePrice.Valid && i.SalePrice.Decimal.LessThan(i.Price) {
		return i.SalePrice.Decimal
	}
	return i.Price
}

func (i Inventory) Supports(f Fulfillment) bool {
	switch f {
	case Delivery:
		return i.DeliveryEligible
	case Collection:
		return i.CollectionEligible
	}
	return false
}

// Summary is the slice of a product that cart and order views embed.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Brand    string `json:"brand,omitempty"`
	ImageKey string `json:"-"`
	ImageURL string `json:"image_url,omitempty"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// category filter applied
	Category string    `json:"category,omitempty"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	Items    []Product `json:"items"`
}
