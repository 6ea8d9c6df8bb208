package order

import (
	"context"
	"errors"
	"time"

	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/product"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrDuplicateNumber  = errors.New("order number already used")
	ErrDuplicatePayment = errors.New("payment reference already recorded")
)

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	// FindPendingByCart returns the unpaid pre-order placed from a cart.
	FindPendingByCart(ctx context.Context, cartID string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, st Status, ps PaymentStatus) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	AddTimeline(ctx context.Context, e *TimelineEntry) error
	Timeline(ctx context.Context, orderID string) ([]TimelineEntry, error)
	CreatePayment(ctx context.Context, p *Payment) error
	PaymentByReference(ctx context.Context, ref string) (*Payment, error)
}

type PGRepo struct{ db *db.Pool }

func NewPGRepo(pool *db.Pool) *PGRepo { return &PGRepo{db: pool} }

const orderCols = `id, number, user_id::text, cart_id::text, email, status, payment_status,
	subtotal::text, delivery_fee::text, total::text, shipping_address_id::text, notes, paid_at,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	return row.Scan(&o.ID, &o.Number, &o.UserID, &o.CartID, &o.Email, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.DeliveryFee, &o.Total, &o.ShippingAddressID, &o.Notes, &o.PaidAt,
		&o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.Savepoint(ctx, func(ctx context.Context) error {
		q := r.db.Q(ctx)
		err := q.QueryRow(ctx, `
			INSERT INTO orders (id, number, user_id, cart_id, email, status, payment_status,
			                    subtotal, delivery_fee, total, shipping_address_id, notes, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
			RETURNING created_at, updated_at
		`, o.ID, o.Number, o.UserID, o.CartID, o.Email, o.Status, o.PaymentStatus,
			o.Subtotal, o.DeliveryFee, o.Total, o.ShippingAddressID, o.Notes).Scan(&o.CreatedAt, &o.UpdatedAt)
		if db.IsUniqueViolation(err, "orders_number_key") {
			return ErrDuplicateNumber
		}
		if err != nil {
			return err
		}

		for _, it := range items {
			if _, err := q.Exec(ctx, `
				INSERT INTO order_items (id, order_id, inventory_id, product_id, name, sku, quantity, unit_price, fulfillment)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			`, it.ID, o.ID, it.InventoryID, it.ProductID, it.Name, it.SKU, it.Quantity, it.UnitPrice, it.Fulfillment); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, `id::text = $1`, id)
}

func (r *PGRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, `number = $1`, number)
}

func (r *PGRepo) FindPendingByCart(ctx context.Context, cartID string) (*Order, error) {
	return r.getOne(ctx, `cart_id::text = $1 AND status = 'pending'`, cartID)
}

func (r *PGRepo) getOne(ctx context.Context, where, arg string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	row := r.db.Q(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE `+where+` ORDER BY created_at DESC LIMIT 1`, arg)
	if err := scanOrder(row, &o); err != nil {
		if db.NoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.GetItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset = product.NormalizePage(limit, offset)
	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT `+orderCols+`
		FROM orders WHERE user_id::text = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, st Status, ps PaymentStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id::text = $1
	`, id, st, ps)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Q(ctx).Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, paid_at = $4, updated_at = NOW()
		WHERE id::text = $1 AND status = 'pending'
	`, id, StatusPaid, PaymentCaptured, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT id, order_id, inventory_id, product_id, name, sku, quantity, unit_price::text, fulfillment
		FROM order_items
		WHERE order_id::text = $1
		ORDER BY name ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.InventoryID, &it.ProductID, &it.Name, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.Fulfillment); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) AddTimeline(ctx context.Context, e *TimelineEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO order_timeline (id, order_id, status, note, created_at)
		VALUES ($1,$2,$3,$4,clock_timestamp())
		RETURNING created_at
	`, e.ID, e.OrderID, e.Status, e.Note).Scan(&e.CreatedAt)
}

func (r *PGRepo) Timeline(ctx context.Context, orderID string) ([]TimelineEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Q(ctx).Query(ctx, `
		SELECT id, order_id, status, note, created_at
		FROM order_timeline WHERE order_id::text = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TimelineEntry{}
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreatePayment(ctx context.Context, p *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.Q(ctx).QueryRow(ctx, `
		INSERT INTO payments (id, order_id, provider, reference, amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`, p.ID, p.OrderID, p.Provider, p.Reference, p.Amount, p.Status).Scan(&p.CreatedAt)
	if db.IsUniqueViolation(err, "") {
		return ErrDuplicatePayment
	}
	return err
}

func (r *PGRepo) PaymentByReference(ctx context.Context, ref string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Payment
	err := r.db.Q(ctx).QueryRow(ctx, `
		SELECT id, order_id::text, provider, reference, amount::text, status, created_at
		FROM payments WHERE reference = $1
	`, ref).Scan(&p.ID, &p.OrderID, &p.Provider, &p.Reference, &p.Amount, &p.Status, &p.CreatedAt)
	if err != nil {
		if db.NoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
