// Package cart implements the shopping cart accessor and its mutators.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/product"
)

var (
	ErrNotFound               = errors.New("cart not found")
	ErrItemNotFound           = errors.New("cart item not found")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidFulfillment     = errors.New("fulfillment must be delivery or collection")
	ErrFulfillmentUnavailable = errors.New("fulfillment not available for this item")
	ErrInsufficientStock      = errors.New("not enough stock for requested quantity")
	ErrNoOwner                = errors.New("cart owner is required")
)

type Repository interface {
	// Find loads the owner's cart with its items, their inventory and product.
	Find(ctx context.Context, owner Owner) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	InsertItem(ctx context.Context, it *Item) error
	SetQuantity(ctx context.Context, itemID string, qty int) error
	SetFulfillment(ctx context.Context, itemID string, f product.Fulfillment) error
	DeleteItem(ctx context.Context, itemID string) error
	SetTotal(ctx context.Context, cartID string, total decimal.Decimal) error
	// Reassign hands the cart to a new owner.
	Reassign(ctx context.Context, cartID string, owner Owner) error
	Delete(ctx context.Context, cartID string) error
}

type PGRepo struct{ db *db.Pool }

func NewPGRepo(pool *db.Pool) *PGRepo { return &PGRepo{db: pool} }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PGRepo) Find(ctx context.Context, owner Owner) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	owner = owner.Normalize()
	var c Cart
	err := r.db.Q(ctx).QueryRow(ctx, `
		SELECT id, user_id::text, session_id, total::text, created_at, updated_at
		FROM carts
		WHERE ($1 <> '' AND user_id::text = $1) OR ($1 = '' AND session_id = $2)
	`, owner.UserID, owner.SessionID).Scan(&c.ID, &c.UserID, &c.SessionID, &c.Total, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.NoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.inventory_id, ci.quantity, ci.fulfillment, ci.created_at,
		       i.id, i.product_id, i.sku, i.stock, i.held, i.price::text, i.sale_price::text,
		       i.delivery_eligible, i.collection_eligible, i.updated_at,
		       p.id, p.name, p.slug, p.brand, p.image_key
		FROM cart_items ci
		JOIN inventory i ON i.id = ci.inventory_id
		JOIN products p ON p.id = i.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC
	`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []Item{}
	for rows.Next() {
		var it Item
		inv := &product.Inventory{}
		p := &product.Summary{}
		if err := rows.Scan(&it.ID, &it.CartID, &it.InventoryID, &it.Quantity, &it.Fulfillment, &it.CreatedAt,
			&inv.ID, &inv.ProductID, &inv.SKU, &inv.Stock, &inv.Held, &inv.Price, &inv.SalePrice,
			&inv.DeliveryEligible, &inv.CollectionEligible, &inv.UpdatedAt,
			&p.ID, &p.Name, &p.Slug, &p.Brand, &p.ImageKey); err != nil {
			return nil, err
		}
		it.Inventory, it.Product = inv, p
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO carts (id, user_id, session_id, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		RETURNING created_at, updated_at
	`, c.ID, c.UserID, c.SessionID, c.Total).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *PGRepo) InsertItem(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO cart_items (id, cart_id, inventory_id, quantity, fulfillment, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING created_at
	`, it.ID, it.CartID, it.InventoryID, it.Quantity, it.Fulfillment).Scan(&it.CreatedAt)
}

func (r *PGRepo) exec(ctx context.Context, sql string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PGRepo) SetQuantity(ctx context.Context, itemID string, qty int) error {
	return r.exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id::text = $1`, itemID, qty)
}

func (r *PGRepo) SetFulfillment(ctx context.Context, itemID string, f product.Fulfillment) error {
	return r.exec(ctx, `UPDATE cart_items SET fulfillment = $2 WHERE id::text = $1`, itemID, f)
}

func (r *PGRepo) DeleteItem(ctx context.Context, itemID string) error {
	return r.exec(ctx, `DELETE FROM cart_items WHERE id::text = $1`, itemID)
}

func (r *PGRepo) SetTotal(ctx context.Context, cartID string, total decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Q(ctx).Exec(ctx, `UPDATE carts SET total = $2, updated_at = NOW() WHERE id::text = $1`, cartID, total)
	return err
}

func (r *PGRepo) Reassign(ctx context.Context, cartID string, owner Owner) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	owner = owner.Normalize()
	_, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE carts SET user_id = $2, session_id = $3, updated_at = NOW() WHERE id::text = $1
	`, cartID, nullable(owner.UserID), nullable(owner.SessionID))
	return err
}

func (r *PGRepo) Delete(ctx context.Context, cartID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Q(ctx).Exec(ctx, `DELETE FROM carts WHERE id::text = $1`, cartID)
	return err
}
