package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/media"
	"github.com/MikeMC777/plumbstore/internal/metrics"
	"github.com/MikeMC777/plumbstore/internal/product"
)

// Holds reports the units of an inventory row reserved by the cart's own
// unpaid pre-order. Those units count as available to the same cart.
type Holds interface {
	HeldByCart(ctx context.Context, cartID, inventoryID string) (int, error)
}

type Service struct {
	tx    db.TxRunner
	repo  Repository
	stock product.Stock
	holds Holds
	media media.Resolver
}

// NewService builds the cart service. holds may be nil when no orders are
// placed from carts.
func NewService(tx db.TxRunner, repo Repository, stock product.Stock, holds Holds, m media.Resolver) *Service {
	return &Service{tx: tx, repo: repo, stock: stock, holds: holds, media: m}
}

// AddInput is the body of POST /api/cart/items.
type AddInput struct {
	InventoryID string              `json:"inventory_id" example:"7b0c4c43-3f0e-4d0c-9a57-0d7f0f3c2f11"`
	Quantity    int                 `json:"quantity"     example:"2"`
	Fulfillment product.Fulfillment `json:"fulfillment"  example:"delivery"`
}

func record(op string, err error) {
	metrics.CartMutations.WithLabelValues(op, metrics.Outcome(err)).Inc()
}

func (s *Service) withImages(ctx context.Context, c *Cart) *Cart {
	for i := range c.Items {
		if p := c.Items[i].Product; p != nil && s.media != nil {
			p.ImageURL = s.media.URL(ctx, p.ImageKey)
		}
	}
	return c
}

// Get returns the owner's cart, or an empty one when none exists yet.
func (s *Service) Get(ctx context.Context, owner Owner) (*Cart, error) {
	if owner.Empty() {
		return (&Cart{}).priced(), nil
	}
	c, err := s.repo.Find(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return (&Cart{}).priced(), nil
	}
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, c.priced()), nil
}

// refresh reloads the cart and stores the recomputed total.
func (s *Service) refresh(ctx context.Context, owner Owner) (*Cart, error) {
	c, err := s.repo.Find(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.priced()
	if err := s.repo.SetTotal(ctx, c.ID, c.Total); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) findOrCreate(ctx context.Context, owner Owner) (*Cart, error) {
	c, err := s.repo.Find(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	owner = owner.Normalize()
	c = &Cart{ID: uuid.NewString(), UserID: nullable(owner.UserID), SessionID: nullable(owner.SessionID), Items: []Item{}}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) checkStock(ctx context.Context, cartID, inventoryID string, want int) (*product.Inventory, error) {
	inv, err := s.stock.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	avail := inv.Available()
	if s.holds != nil && cartID != "" {
		own, err := s.holds.HeldByCart(ctx, cartID, inventoryID)
		if err != nil {
			return nil, err
		}
		avail += own
	}
	if want > avail {
		return nil, ErrInsufficientStock
	}
	return inv, nil
}

// Add finds or creates the cart, then increments the line for the
// inventory and fulfillment type or inserts it.
func (s *Service) Add(ctx context.Context, owner Owner, in AddInput) (out *Cart, err error) {
	defer func() { record("add", err) }()
	if owner.Empty() {
		return nil, ErrNoOwner
	}
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !in.Fulfillment.Valid() {
		return nil, ErrInvalidFulfillment
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.findOrCreate(ctx, owner)
		if err != nil {
			return err
		}
		inv, err := s.checkStock(ctx, c.ID, in.InventoryID, c.quantityOf(in.InventoryID, "")+in.Quantity)
		if err != nil {
			return err
		}
		if !inv.Supports(in.Fulfillment) {
			return ErrFulfillmentUnavailable
		}

		if line, ok := c.line(in.InventoryID, in.Fulfillment); ok {
			err = s.repo.SetQuantity(ctx, line.ID, line.Quantity+in.Quantity)
		} else {
			err = s.repo.InsertItem(ctx, &Item{
				ID:          uuid.NewString(),
				CartID:      c.ID,
				InventoryID: in.InventoryID,
				Quantity:    in.Quantity,
				Fulfillment: in.Fulfillment,
			})
		}
		if err != nil {
			return err
		}
		out, err = s.refresh(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, out), nil
}

func (s *Service) Remove(ctx context.Context, owner Owner, itemID string) (out *Cart, err error) {
	defer func() { record("remove", err) }()

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownedItem(ctx, owner, itemID); err != nil {
			return err
		}
		if err := s.repo.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		out, err = s.refresh(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, out), nil
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner Owner, itemID string, qty int) (out *Cart, err error) {
	if qty == 0 {
		return s.Remove(ctx, owner, itemID)
	}
	defer func() { record("quantity", err) }()
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		c, it, err := s.ownedItemIn(ctx, owner, itemID)
		if err != nil {
			return err
		}
		if _, err := s.checkStock(ctx, c.ID, it.InventoryID, c.quantityOf(it.InventoryID, it.ID)+qty); err != nil {
			return err
		}
		if err := s.repo.SetQuantity(ctx, itemID, qty); err != nil {
			return err
		}
		out, err = s.refresh(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, out), nil
}

// SetFulfillment switches a line between delivery and collection, folding
// it into an existing line of the target type when there is one.
func (s *Service) SetFulfillment(ctx context.Context, owner Owner, itemID string, f product.Fulfillment) (out *Cart, err error) {
	defer func() { record("fulfillment", err) }()
	if !f.Valid() {
		return nil, ErrInvalidFulfillment
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		c, it, err := s.ownedItemIn(ctx, owner, itemID)
		if err != nil {
			return err
		}
		if it.Fulfillment != f {
			inv, err := s.stock.GetInventory(ctx, it.InventoryID)
			if err != nil {
				return err
			}
			if !inv.Supports(f) {
				return ErrFulfillmentUnavailable
			}
			if other, ok := c.line(it.InventoryID, f); ok {
				if err := s.repo.SetQuantity(ctx, other.ID, other.Quantity+it.Quantity); err != nil {
					return err
				}
				err = s.repo.DeleteItem(ctx, it.ID)
			} else {
				err = s.repo.SetFulfillment(ctx, it.ID, f)
			}
			if err != nil {
				return err
			}
		}
		out, err = s.refresh(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, out), nil
}

// Merge moves the anonymous session cart into the user's cart after login.
// Quantities of matching lines are summed. When the user has no cart the
// session cart is simply re-owned.
func (s *Service) Merge(ctx context.Context, sessionID, userID string) (err error) {
	if sessionID == "" || userID == "" {
		return nil
	}
	defer func() { record("merge", err) }()

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		anon, err := s.repo.Find(ctx, Owner{SessionID: sessionID})
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mine, err := s.repo.Find(ctx, Owner{UserID: userID})
		if errors.Is(err, ErrNotFound) {
			return s.repo.Reassign(ctx, anon.ID, Owner{UserID: userID})
		}
		if err != nil {
			return err
		}

		for _, it := range anon.Items {
			if line, ok := mine.line(it.InventoryID, it.Fulfillment); ok {
				err = s.repo.SetQuantity(ctx, line.ID, line.Quantity+it.Quantity)
			} else {
				err = s.repo.InsertItem(ctx, &Item{
					ID:          uuid.NewString(),
					CartID:      mine.ID,
					InventoryID: it.InventoryID,
					Quantity:    it.Quantity,
					Fulfillment: it.Fulfillment,
				})
			}
			if err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, anon.ID); err != nil {
			return err
		}
		merged, err := s.refresh(ctx, Owner{UserID: userID})
		if err != nil {
			return err
		}
		logx.From(ctx).Info("cart merged",
			zap.String("user_id", userID), zap.Int("lines", len(merged.Items)))
		return nil
	})
}

// Line is a quantity of one inventory row under one fulfillment type, as
// snapshotted into an order.
type Line struct {
	InventoryID string
	Fulfillment product.Fulfillment
	Quantity    int
}

// Consume takes the lines of a paid order out of the owner's cart. Units
// added after the order was placed stay behind; the cart is deleted once
// nothing is left.
func (s *Service) Consume(ctx context.Context, owner Owner, lines []Line) (err error) {
	if owner.Empty() {
		return nil
	}
	defer func() { record("consume", err) }()

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.Find(ctx, owner)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		left := len(c.Items)
		for _, l := range lines {
			it, ok := c.line(l.InventoryID, l.Fulfillment)
			if !ok {
				continue
			}
			if rest := it.Quantity - l.Quantity; rest > 0 {
				err = s.repo.SetQuantity(ctx, it.ID, rest)
			} else {
				err = s.repo.DeleteItem(ctx, it.ID)
				left--
			}
			if err != nil {
				return err
			}
		}
		if left <= 0 {
			return s.repo.Delete(ctx, c.ID)
		}
		_, err = s.refresh(ctx, owner)
		return err
	})
}

func (s *Service) ownedItem(ctx context.Context, owner Owner, itemID string) (Item, error) {
	_, it, err := s.ownedItemIn(ctx, owner, itemID)
	return it, err
}

func (s *Service) ownedItemIn(ctx context.Context, owner Owner, itemID string) (*Cart, Item, error) {
	if owner.Empty() {
		return nil, Item{}, ErrItemNotFound
	}
	c, err := s.repo.Find(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return nil, Item{}, ErrItemNotFound
	}
	if err != nil {
		return nil, Item{}, err
	}
	it, ok := c.item(itemID)
	if !ok {
		return nil, Item{}, ErrItemNotFound
	}
	return c, it, nil
}
