package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/plumbstore/internal/product"
)

// Owner identifies whose cart is addressed. UserID wins when both are set.
type Owner struct {
	UserID    string
	SessionID string
}

func (o Owner) Empty() bool { return o.UserID == "" && o.SessionID == "" }

// Normalize keeps only the field that decides ownership.
func (o Owner) Normalize() Owner {
	if o.UserID != "" {
		return Owner{UserID: o.UserID}
	}
	return Owner{SessionID: o.SessionID}
}

type Cart struct {
	ID        string          `json:"id,omitempty"`
	UserID    *string         `json:"user_id,omitempty"`
	SessionID *string         `json:"-"`
	Total     decimal.Decimal `json:"total"`
	Items     []Item          `json:"items"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

type Item struct {
	ID          string              `json:"id"`
	CartID      string              `json:"cart_id"`
	InventoryID string              `json:"inventory_id"`
	Quantity    int                 `json:"quantity"`
	Fulfillment product.Fulfillment `json:"fulfillment"`
	Inventory   *product.Inventory  `json:"inventory,omitempty"`
	Product     *product.Summary    `json:"product,omitempty"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	LineTotal   decimal.Decimal     `json:"line_total"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Price is the current unit price of the line's inventory.
func (i Item) Price() decimal.Decimal {
	if i.Inventory != nil {
		return i.Inventory.UnitPrice()
	}
	return i.UnitPrice
}

// Total is Σ(unit price × quantity) over items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) item(id string) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (c *Cart) line(inventoryID string, f product.Fulfillment) (Item, bool) {
	for _, it := range c.Items {
		if it.InventoryID == inventoryID && it.Fulfillment == f {
			return it, true
		}
	}
	return Item{}, false
}

// quantityOf sums every line of the inventory, across fulfillment types,
// optionally leaving one line out.
func (c *Cart) quantityOf(inventoryID, exceptItem string) int {
	n := 0
	for _, it := range c.Items {
		if it.InventoryID == inventoryID && it.ID != exceptItem {
			n += it.Quantity
		}
	}
	return n
}

// HasDelivery reports whether any line ships.
func (c *Cart) HasDelivery() bool {
	for _, it := range c.Items {
		if it.Fulfillment == product.Delivery {
			return true
		}
	}
	return false
}

// priced fills per-line prices and recomputes the total.
func (c *Cart) priced() *Cart {
	if c.Items == nil {
		c.Items = []Item{}
	}
	for i := range c.Items {
		c.Items[i].UnitPrice = c.Items[i].Price()
		c.Items[i].LineTotal = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
	}
	c.Total = Total(c.Items)
	return c
}
