package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/plumbstore/internal/product"
)

type Order struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	UserID            string          `json:"user_id,omitempty"`
	CartID            *string         `json:"cart_id,omitempty"`
	Email             string          `json:"email,omitempty"`
	Status            Status          `json:"status"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	Total             decimal.Decimal `json:"total"`
	ShippingAddressID *string         `json:"shipping_address_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	Items             []Item          `json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Item is a priced snapshot of a cart line taken at pre-order time.
type Item struct {
	ID          string              `json:"id"`
	OrderID     string              `json:"order_id"`
	InventoryID string              `json:"inventory_id"`
	ProductID   string              `json:"product_id"`
	Name        string              `json:"name"`
	SKU         string              `json:"sku"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	Fulfillment product.Fulfillment `json:"fulfillment"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type TimelineEntry struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Provider  string          `json:"provider"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
