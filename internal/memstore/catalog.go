package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/product"
)

var errDuplicate = errors.New("memstore: duplicate key")

type Categories struct{ s *Store }

func (r *Categories) Create(_ context.Context, c *category.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.categories {
		if x.Type == c.Type && x.Tier == c.Tier && x.Slug == c.Slug &&
			deref(x.PrimaryID) == deref(c.PrimaryID) && deref(x.SecondaryID) == deref(c.SecondaryID) &&
			deref(x.TertiaryID) == deref(c.TertiaryID) {
			return errDuplicate
		}
	}
	r.s.d.categories[c.ID] = *c
	return nil
}

func (r *Categories) List(_ context.Context, f category.Filter) ([]category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []category.Category
	for _, c := range r.s.d.categories {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	category.SortSiblings(out)
	return out, nil
}

func (r *Categories) ListType(_ context.Context, typ string) ([]category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []category.Category
	for _, c := range r.s.d.categories {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	category.SortSiblings(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out, nil
}

// Products implements product.Repository and product.Stock.
type Products struct{ s *Store }

func (r *Products) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.products {
		if x.Slug == p.Slug {
			return errDuplicate
		}
	}
	now := r.s.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	cp.Inventory = nil
	r.s.d.products[p.ID] = cp
	return nil
}

func (r *Products) CreateInventory(_ context.Context, inv *product.Inventory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.products[inv.ProductID]; !ok {
		return product.ErrNotFound
	}
	for _, x := range r.s.d.inventory {
		if x.SKU == inv.SKU {
			return errDuplicate
		}
	}
	inv.UpdatedAt = r.s.tick()
	r.s.d.inventory[inv.ID] = *inv
	return nil
}

// withInventory must be called with mu held.
func (r *Products) withInventory(p product.Product) product.Product {
	p.Inventory = nil
	for _, inv := range r.s.d.inventory {
		if inv.ProductID == p.ID {
			p.Inventory = append(p.Inventory, inv)
		}
	}
	sort.Slice(p.Inventory, func(i, j int) bool {
		a, b := p.Inventory[i], p.Inventory[j]
		if !a.Price.Equal(b.Price) {
			return a.Price.LessThan(b.Price)
		}
		return a.SKU < b.SKU
	})
	return p
}

func (r *Products) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p = r.withInventory(p)
	return &p, nil
}

func (r *Products) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.products {
		if p.Slug == slug {
			p = r.withInventory(p)
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (r *Products) inCategory(p product.Product, id string) bool {
	if id == "" {
		return true
	}
	c, ok := r.s.d.categories[p.CategoryID]
	if !ok {
		return false
	}
	if c.ID == id {
		return true
	}
	for _, a := range c.Ancestors() {
		if a == id {
			return true
		}
	}
	return false
}

func matches(p product.Product, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Brand), q)
}

func (r *Products) List(_ context.Context, q product.Query) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	limit, offset := product.NormalizePage(q.Limit, q.Offset)
	search := strings.TrimSpace(q.Q)
	var all []product.Product
	for _, p := range r.s.d.products {
		if matches(p, search) && r.inCategory(p, q.CategoryID) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	for i := range all {
		all[i] = r.withInventory(all[i])
	}
	return all, nil
}

func (r *Products) GetInventory(_ context.Context, id string) (*product.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.d.inventory[id]
	if !ok {
		return nil, product.ErrInventoryNotFound
	}
	return &inv, nil
}

func (r *Products) update(id string, fn func(*product.Inventory) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.d.inventory[id]
	if !ok {
		return product.ErrInventoryNotFound
	}
	if err := fn(&inv); err != nil {
		return err
	}
	inv.UpdatedAt = r.s.tick()
	r.s.d.inventory[id] = inv
	return nil
}

func (r *Products) AdjustHeld(_ context.Context, id string, delta int) error {
	return r.update(id, func(inv *product.Inventory) error {
		inv.Held += delta
		if inv.Held < 0 {
			inv.Held = 0
		}
		return nil
	})
}

func (r *Products) Commit(_ context.Context, id string, qty int) error {
	return r.update(id, func(inv *product.Inventory) error {
		if inv.Stock < qty {
			return product.ErrInsufficientStock
		}
		inv.Stock -= qty
		inv.Held -= qty
		if inv.Held < 0 {
			inv.Held = 0
		}
		return nil
	})
}

func (r *Products) Restock(_ context.Context, id string, qty int) error {
	return r.update(id, func(inv *product.Inventory) error {
		inv.Stock += qty
		return nil
	})
}
