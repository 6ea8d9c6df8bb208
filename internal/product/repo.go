// Package product provides the catalog and inventory repository interfaces and
// their PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MikeMC777/plumbstore/internal/db"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Query struct {
	Q          string
	CategoryID string
	Limit      int
	Offset     int
}

// NormalizePage clamps limit to 1..100 (default 20) and offset to >= 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	CreateInventory(ctx context.Context, inv *Inventory) error
}

// Stock is the inventory side used by cart and checkout.
type Stock interface {
	GetInventory(ctx context.Context, id string) (*Inventory, error)
	// AdjustHeld adds delta to the held count, never below zero.
	AdjustHeld(ctx context.Context, id string, delta int) error
	// Commit turns qty held units into a sale: stock and held both drop by qty.
	Commit(ctx context.Context, id string, qty int) error
	Restock(ctx context.Context, id string, qty int) error
}

type PGRepo struct{ db *db.Pool }

func NewPGRepo(pool *db.Pool) *PGRepo { return &PGRepo{db: pool} }

const productCols = `p.id, p.category_id, p.name, p.slug, p.brand, p.description, p.image_key, p.created_at, p.updated_at`

const inventoryCols = `id, product_id, sku, stock, held, price::text, sale_price::text,
	delivery_eligible, collection_eligible, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanProduct(row scanner, p *Product) error {
	return row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Brand, &p.Description, &p.ImageKey, &p.CreatedAt, &p.UpdatedAt)
}

func scanInventory(row scanner, inv *Inventory) error {
	return row.Scan(&inv.ID, &inv.ProductID, &inv.SKU, &inv.Stock, &inv.Held, &inv.Price, &inv.SalePrice,
		&inv.DeliveryEligible, &inv.CollectionEligible, &inv.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Q(ctx).Exec(ctx, `
		INSERT INTO products (id, category_id, name, slug, brand, description, image_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
	`, p.ID, p.CategoryID, p.Name, p.Slug, p.Brand, p.Description, p.ImageKey)
	return err
}

func (r *PGRepo) CreateInventory(ctx context.Context, inv *Inventory) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Q(ctx).Exec(ctx, `
		INSERT INTO inventory (id, product_id, sku, stock, held, price, sale_price, delivery_eligible, collection_eligible, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
	`, inv.ID, inv.ProductID, inv.SKU, inv.Stock, inv.Held, inv.Price, inv.SalePrice, inv.DeliveryEligible, inv.CollectionEligible)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	return r.getOne(ctx, `p.id::text = $1`, id)
}

func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, `p.slug = $1`, slug)
}

func (r *PGRepo) getOne(ctx context.Context, where string, arg string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	row := r.db.Q(ctx).QueryRow(ctx, `SELECT `+productCols+` FROM products p WHERE `+where, arg)
	if err := scanProduct(row, &p); err != nil {
		if db.NoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	inv, err := r.inventoryFor(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Inventory = inv[p.ID]
	return &p, nil
}

// List filters by free text and by category, where a category matches its
// own products and those of every descendant tier.
func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := NormalizePage(q.Limit, q.Offset)
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT `+productCols+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE ($1 = '' OR p.name ILIKE '%'||$1||'%' OR p.description ILIKE '%'||$1||'%' OR p.brand ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.id::text = $2 OR c.primary_id::text = $2 OR c.secondary_id::text = $2 OR c.tertiary_id::text = $2)
		ORDER BY p.name ASC, p.id ASC
		LIMIT $3 OFFSET $4
	`, search, q.CategoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	var ids []string
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	inv, err := r.inventoryFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Inventory = inv[out[i].ID]
	}
	return out, nil
}

func (r *PGRepo) inventoryFor(ctx context.Context, productIDs []string) (map[string][]Inventory, error) {
	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT `+inventoryCols+`
		FROM inventory WHERE product_id::text = ANY($1)
		ORDER BY price ASC, sku ASC
	`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Inventory, len(productIDs))
	for rows.Next() {
		var inv Inventory
		if err := scanInventory(rows, &inv); err != nil {
			return nil, err
		}
		out[inv.ProductID] = append(out[inv.ProductID], inv)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetInventory(ctx context.Context, id string) (*Inventory, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var inv Inventory
	row := r.db.Q(ctx).QueryRow(ctx, `SELECT `+inventoryCols+` FROM inventory WHERE id::text = $1`, id)
	if err := scanInventory(row, &inv); err != nil {
		if db.NoRows(err) {
			return nil, ErrInventoryNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepo) AdjustHeld(ctx context.Context, id string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE inventory
		SET held = GREATEST(held + $2, 0), updated_at = NOW()
		WHERE id::text = $1
	`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

func (r *PGRepo) Commit(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE inventory
		SET stock = stock - $2, held = GREATEST(held - $2, 0), updated_at = NOW()
		WHERE id::text = $1 AND stock >= $2
	`, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetInventory(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *PGRepo) Restock(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE inventory SET stock = stock + $2, updated_at = NOW() WHERE id::text = $1
	`, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInventoryNotFound
	}
	return nil
}
