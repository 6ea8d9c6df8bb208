// Package checkout turns a cart into a pre-order and confirms its payment.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/cache"
	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/events"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/payment"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/user"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrDetailsRequired = errors.New("customer details are required before placing an order")
	ErrAddressRequired = errors.New("a delivery address is required for delivery items")
	ErrOutOfStock      = errors.New("item no longer available in the requested quantity")
	ErrPaymentInFlight = errors.New("a payment with this idempotency key is already being processed")
	ErrOrderNotPending = order.ErrNotPending
)

type Config struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	IdempotencyTTL        time.Duration
}

type Service struct {
	tx      db.TxRunner
	carts   *cart.Service
	users   *user.Service
	orders  *order.Service
	stock   product.Stock
	gateway payment.Gateway
	cache   cache.Cache
	cfg     Config
}

func NewService(tx db.TxRunner, carts *cart.Service, users *user.Service, orders *order.Service,
	stock product.Stock, gw payment.Gateway, c cache.Cache, cfg Config) *Service {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	return &Service{tx: tx, carts: carts, users: users, orders: orders, stock: stock, gateway: gw, cache: c, cfg: cfg}
}

// Customer is who is checking out: an authenticated user, or an anonymous
// session that may already have a guest user attached.
type Customer struct {
	UserID    string
	GuestID   string
	SessionID string
	// AddressIDs are the addresses this session added for its guest. A guest
	// only sees and uses those; an account sees all of its own.
	AddressIDs []string
	// LastOrderID is the pre-order this session placed last.
	LastOrderID string
}

func (c Customer) Owner() cart.Owner { return cart.Owner{UserID: c.UserID, SessionID: c.SessionID} }

// canUse reports whether the customer may see and ship to the address.
func (c Customer) canUse(addressID string) bool {
	return c.UserID != "" || slices.Contains(c.AddressIDs, addressID)
}

// ID is the user the order belongs to, "" until details were submitted.
func (c Customer) ID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.GuestID
}

// DeliveryFee is zero for collection-only carts and for carts at or above
// the free delivery threshold.
func (s *Service) DeliveryFee(subtotal decimal.Decimal, hasDelivery bool) decimal.Decimal {
	if !hasDelivery {
		return decimal.Zero
	}
	if s.cfg.FreeDeliveryThreshold.IsPositive() && subtotal.GreaterThanOrEqual(s.cfg.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return s.cfg.DeliveryFee
}

// Summary is what GET /api/checkout returns for any step.
type Summary struct {
	Step        Step            `json:"step"`
	Steps       []Step          `json:"steps"`
	Cart        *cart.Cart      `json:"cart"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Customer    *user.User      `json:"customer,omitempty"`
	Addresses   []user.Address  `json:"addresses,omitempty"`
	Pending     *order.Order    `json:"pending_order,omitempty"`
}

func (s *Service) Summary(ctx context.Context, cust Customer, step Step) (*Summary, error) {
	c, err := s.carts.Get(ctx, cust.Owner())
	if err != nil {
		return nil, err
	}
	fee := s.DeliveryFee(c.Total, c.HasDelivery())
	out := &Summary{
		Step: step, Steps: Steps, Cart: c,
		Subtotal: c.Total, DeliveryFee: fee, Total: c.Total.Add(fee),
	}
	if id := cust.ID(); id != "" {
		u, err := s.users.Get(ctx, id)
		switch {
		case err == nil:
			out.Customer = u
			list, err := s.users.ListAddresses(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, a := range list {
				if cust.canUse(a.ID) {
					out.Addresses = append(out.Addresses, a)
				}
			}
		case !errors.Is(err, user.ErrNotFound):
			return nil, err
		}
	}
	if c.ID != "" {
		p, err := s.orders.FindPendingByCart(ctx, c.ID)
		switch {
		case err == nil:
			out.Pending = p
		case !errors.Is(err, order.ErrNotFound):
			return nil, err
		}
	}
	return out, nil
}

// DetailsInput is the body of POST /api/checkout/details.
type DetailsInput struct {
	user.Details
	Address *user.AddressInput `json:"address,omitempty"`
}

type DetailsResult struct {
	User    *user.User    `json:"user"`
	Address *user.Address `json:"address,omitempty"`
}

// SubmitDetails resolves the customer (see user.Service.EnsureGuest) and
// stores the shipping address when one is given.
func (s *Service) SubmitDetails(ctx context.Context, cust Customer, in DetailsInput) (*DetailsResult, error) {
	var out DetailsResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		u, err := s.users.EnsureGuest(ctx, cust.ID(), in.Details)
		if err != nil {
			return err
		}
		out.User = u
		if in.Address != nil {
			if out.Address, err = s.users.AddAddress(ctx, u.ID, *in.Address); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PreOrderInput is the body of POST /api/checkout/pre-order.
type PreOrderInput struct {
	AddressID string `json:"address_id" example:"0b8e0f0e-8d9e-4c3e-b7a8-6f1f2c4d5e6a"`
	Notes     string `json:"notes"      example:"leave with neighbour"`
}

// PlacePreOrder snapshots the cart into a pending order and holds its units,
// all in one transaction. An earlier pending order from the same cart is
// canceled first so its holds are not counted twice.
func (s *Service) PlacePreOrder(ctx context.Context, cust Customer, in PreOrderInput) (*order.Order, error) {
	userID := cust.ID()
	if userID == "" {
		return nil, ErrDetailsRequired
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrDetailsRequired
		}
		return nil, err
	}

	var placed, replaced *order.Order
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.carts.Get(ctx, cust.Owner())
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}

		if prev, err := s.orders.FindPendingByCart(ctx, c.ID); err == nil {
			if replaced, err = s.orders.Transition(ctx, prev.ID, order.StatusCanceled, "replaced by a new pre-order"); err != nil {
				return err
			}
		} else if !errors.Is(err, order.ErrNotFound) {
			return err
		}

		var addressID *string
		if in.AddressID != "" {
			if !cust.canUse(in.AddressID) {
				return user.ErrAddressNotFound
			}
			a, err := s.users.Address(ctx, u.ID, in.AddressID)
			if err != nil {
				return err
			}
			addressID = &a.ID
		} else if c.HasDelivery() {
			return ErrAddressRequired
		}

		items, err := s.snapshot(ctx, c)
		if err != nil {
			return err
		}
		subtotal := cart.Total(c.Items)
		fee := s.DeliveryFee(subtotal, c.HasDelivery())
		cartID := c.ID
		o := &order.Order{
			UserID:            u.ID,
			CartID:            &cartID,
			Email:             u.Email,
			Subtotal:          subtotal,
			DeliveryFee:       fee,
			Total:             subtotal.Add(fee),
			ShippingAddressID: addressID,
			Notes:             in.Notes,
		}
		if err := s.orders.Place(ctx, o, items); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replaced != nil {
		s.orders.Announce(ctx, events.OrderCanceled, replaced)
	}
	s.orders.Announce(ctx, events.OrderPlaced, placed)
	logx.From(ctx).Info("pre-order placed",
		zap.String("order", placed.Number), zap.String("total", placed.Total.StringFixed(2)))
	return placed, nil
}

// snapshot prices the cart lines against fresh inventory rows and checks
// that every inventory can still cover the cart's combined quantity.
func (s *Service) snapshot(ctx context.Context, c *cart.Cart) ([]order.Item, error) {
	want := map[string]int{}
	for _, it := range c.Items {
		want[it.InventoryID] += it.Quantity
	}

	items := make([]order.Item, 0, len(c.Items))
	for _, it := range c.Items {
		inv, err := s.stock.GetInventory(ctx, it.InventoryID)
		if err != nil {
			return nil, err
		}
		if !inv.Supports(it.Fulfillment) {
			return nil, fmt.Errorf("%w: %s", cart.ErrFulfillmentUnavailable, inv.SKU)
		}
		if want[it.InventoryID] > inv.Available() {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, inv.SKU)
		}
		name := inv.SKU
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, order.Item{
			InventoryID: inv.ID,
			ProductID:   inv.ProductID,
			Name:        name,
			SKU:         inv.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   inv.UnitPrice(),
			Fulfillment: it.Fulfillment,
		})
	}
	return items, nil
}

// PaymentInput is the body of POST /api/checkout/payment.
type PaymentInput struct {
	OrderID   string `json:"order_id"  example:"5f0c3c1e-1a2b-4c5d-8e9f-0a1b2c3d4e5f"`
	Reference string `json:"reference" example:"pay_3MtwBwLkdIwHu7ix"`
}

func idemKey(k string) string { return "idempotency:payment:" + k }

// ConfirmPayment verifies the payment with the gateway and, in one
// transaction, records it, marks the order paid, commits held stock and
// takes the paid lines out of the cart. Replaying a confirmed reference
// returns the paid order.
func (s *Service) ConfirmPayment(ctx context.Context, cust Customer, in PaymentInput, idempotencyKey string) (*order.Order, error) {
	o, err := s.ownOrder(ctx, cust, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		if s.paidWith(ctx, o, in.Reference) {
			return o, nil
		}
		return nil, ErrOrderNotPending
	}

	if idempotencyKey != "" {
		fresh, err := s.cache.SetNX(ctx, idemKey(idempotencyKey), in.OrderID, s.cfg.IdempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, ErrPaymentInFlight
		}
	}

	paid, err := s.confirm(ctx, cust, o, in.Reference)
	if err != nil {
		if idempotencyKey != "" {
			if derr := s.cache.Del(ctx, idemKey(idempotencyKey)); derr != nil {
				logx.From(ctx).Warn("idempotency key not released", zap.Error(derr))
			}
		}
		return nil, err
	}
	s.orders.Announce(ctx, events.OrderPaid, paid)
	return paid, nil
}

func (s *Service) confirm(ctx context.Context, cust Customer, o *order.Order, reference string) (*order.Order, error) {
	res, err := s.gateway.Verify(ctx, reference, o.Total)
	if err != nil {
		return nil, err
	}

	var paid *order.Order
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		paid, err = s.orders.Pay(ctx, o.ID, order.Payment{
			Provider:  res.Provider,
			Reference: res.Reference,
			Amount:    res.Amount,
			Status:    res.Status,
		})
		if err != nil {
			return err
		}
		lines := make([]cart.Line, 0, len(o.Items))
		for _, it := range o.Items {
			lines = append(lines, cart.Line{InventoryID: it.InventoryID, Fulfillment: it.Fulfillment, Quantity: it.Quantity})
		}
		return s.carts.Consume(ctx, cust.Owner(), lines)
	})
	return paid, err
}

func (s *Service) ownOrder(ctx context.Context, cust Customer, id string) (*order.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cust.ID() == "" || o.UserID != cust.ID() {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *Service) paidWith(ctx context.Context, o *order.Order, reference string) bool {
	if o.PaymentStatus != order.PaymentCaptured || reference == "" {
		return false
	}
	p, err := s.orders.PaymentByReference(ctx, reference)
	return err == nil && p.OrderID == o.ID
}

// Confirmation loads what the confirmation page shows for an order number.
// Only the order's owner, or the session that placed it, sees the full
// order; anyone else gets the public view.
func (s *Service) Confirmation(ctx context.Context, cust Customer, number string) (*order.Confirmation, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	tl, err := s.orders.Timeline(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	conf := &order.Confirmation{Order: o, Timeline: tl}
	if (cust.ID() != "" && cust.ID() == o.UserID) || (cust.LastOrderID != "" && cust.LastOrderID == o.ID) {
		return conf, nil
	}
	return conf.Public(), nil
}
