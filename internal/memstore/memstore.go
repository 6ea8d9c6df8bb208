// Package memstore is a process-local implementation of every repository,
// used by `serve --store=memory` for demos and by tests that exercise
// services across packages. Transactions are serialized and roll back by
// restoring a snapshot.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/user"
)

type data struct {
	categories map[string]category.Category
	products   map[string]product.Product
	inventory  map[string]product.Inventory
	users      map[string]user.User
	addresses  map[string]user.Address
	carts      map[string]cart.Cart
	cartItems  map[string]cart.Item
	orders     map[string]order.Order
	orderItems map[string][]order.Item
	timeline   map[string][]order.TimelineEntry
	payments   map[string]order.Payment
}

func newData() data {
	return data{
		categories: map[string]category.Category{},
		products:   map[string]product.Product{},
		inventory:  map[string]product.Inventory{},
		users:      map[string]user.User{},
		addresses:  map[string]user.Address{},
		carts:      map[string]cart.Cart{},
		cartItems:  map[string]cart.Item{},
		orders:     map[string]order.Order{},
		orderItems: map[string][]order.Item{},
		timeline:   map[string][]order.TimelineEntry{},
		payments:   map[string]order.Payment{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlices[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (d data) clone() data {
	return data{
		categories: cloneMap(d.categories),
		products:   cloneMap(d.products),
		inventory:  cloneMap(d.inventory),
		users:      cloneMap(d.users),
		addresses:  cloneMap(d.addresses),
		carts:      cloneMap(d.carts),
		cartItems:  cloneMap(d.cartItems),
		orders:     cloneMap(d.orders),
		orderItems: cloneSlices(d.orderItems),
		timeline:   cloneSlices(d.timeline),
		payments:   cloneMap(d.payments),
	}
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    data
	now  func() time.Time
	seq  int64
}

func New() *Store {
	return &Store{d: newData(), now: time.Now}
}

type txKey struct{}

// InTx serializes fn against other transactions and restores the previous
// state when fn fails. Nested calls join the outer transaction. A write made
// outside InTx while another transaction runs is lost if that one rolls
// back, so services run every write through it.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.d.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.d = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// tick returns a strictly increasing timestamp so insertion order survives
// sorting by time.
func (s *Store) tick() time.Time {
	s.seq++
	return s.now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

func (s *Store) Categories() *Categories { return &Categories{s} }
func (s *Store) Products() *Products     { return &Products{s} }
func (s *Store) Users() *Users           { return &Users{s} }
func (s *Store) Carts() *Carts           { return &Carts{s} }
func (s *Store) Orders() *Orders         { return &Orders{s} }

func strp(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var (
	_ category.Repository = (*Categories)(nil)
	_ product.Repository  = (*Products)(nil)
	_ product.Stock       = (*Products)(nil)
	_ user.Repository     = (*Users)(nil)
	_ cart.Repository     = (*Carts)(nil)
	_ order.Repository    = (*Orders)(nil)
)
