package memstore

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/product"
)

type Carts struct{ s *Store }

func (r *Carts) Find(_ context.Context, owner cart.Owner) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner = owner.Normalize()
	for _, c := range r.s.d.carts {
		if (owner.UserID != "" && deref(c.UserID) == owner.UserID) ||
			(owner.UserID == "" && owner.SessionID != "" && deref(c.SessionID) == owner.SessionID) {
			return r.load(c), nil
		}
	}
	return nil, cart.ErrNotFound
}

// load joins items with inventory and product. mu must be held.
func (r *Carts) load(c cart.Cart) *cart.Cart {
	c.Items = []cart.Item{}
	for _, it := range r.s.d.cartItems {
		if it.CartID != c.ID {
			continue
		}
		if inv, ok := r.s.d.inventory[it.InventoryID]; ok {
			it.Inventory = &inv
			if p, ok := r.s.d.products[inv.ProductID]; ok {
				it.Product = &product.Summary{ID: p.ID, Name: p.Name, Slug: p.Slug, Brand: p.Brand, ImageKey: p.ImageKey}
			}
		}
		c.Items = append(c.Items, it)
	}
	sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].CreatedAt.Before(c.Items[j].CreatedAt) })
	return &c
}

func (r *Carts) Create(_ context.Context, c *cart.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.carts {
		if (c.UserID != nil && deref(x.UserID) == *c.UserID) || (c.SessionID != nil && deref(x.SessionID) == *c.SessionID) {
			return errDuplicate
		}
	}
	now := r.s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	cp.Items = nil
	r.s.d.carts[c.ID] = cp
	return nil
}

func (r *Carts) InsertItem(_ context.Context, it *cart.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.carts[it.CartID]; !ok {
		return cart.ErrNotFound
	}
	if _, ok := r.s.d.inventory[it.InventoryID]; !ok {
		return product.ErrInventoryNotFound
	}
	for _, x := range r.s.d.cartItems {
		if x.CartID == it.CartID && x.InventoryID == it.InventoryID && x.Fulfillment == it.Fulfillment {
			return errDuplicate
		}
	}
	it.CreatedAt = r.s.tick()
	cp := *it
	cp.Inventory, cp.Product = nil, nil
	r.s.d.cartItems[it.ID] = cp
	return nil
}

func (r *Carts) updateItem(id string, fn func(*cart.Item)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.d.cartItems[id]
	if !ok {
		return cart.ErrItemNotFound
	}
	fn(&it)
	r.s.d.cartItems[id] = it
	return nil
}

func (r *Carts) SetQuantity(_ context.Context, itemID string, qty int) error {
	return r.updateItem(itemID, func(it *cart.Item) { it.Quantity = qty })
}

func (r *Carts) SetFulfillment(_ context.Context, itemID string, f product.Fulfillment) error {
	return r.updateItem(itemID, func(it *cart.Item) { it.Fulfillment = f })
}

func (r *Carts) DeleteItem(_ context.Context, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.cartItems[itemID]; !ok {
		return cart.ErrItemNotFound
	}
	delete(r.s.d.cartItems, itemID)
	return nil
}

func (r *Carts) SetTotal(_ context.Context, cartID string, total decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.carts[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	c.Total = total
	c.UpdatedAt = r.s.tick()
	r.s.d.carts[cartID] = c
	return nil
}

func (r *Carts) Reassign(_ context.Context, cartID string, owner cart.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.carts[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	owner = owner.Normalize()
	c.UserID, c.SessionID = strp(owner.UserID), strp(owner.SessionID)
	c.UpdatedAt = r.s.tick()
	r.s.d.carts[cartID] = c
	return nil
}

func (r *Carts) Delete(_ context.Context, cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.d.carts, cartID)
	for id, it := range r.s.d.cartItems {
		if it.CartID == cartID {
			delete(r.s.d.cartItems, id)
		}
	}
	return nil
}
