package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/product"
)

type Orders struct{ s *Store }

func (r *Orders) Create(_ context.Context, o *order.Order, items []order.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.orders {
		if x.Number == o.Number {
			return order.ErrDuplicateNumber
		}
	}
	now := r.s.tick()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	cp.Items = nil
	r.s.d.orders[o.ID] = cp
	stored := make([]order.Item, len(items))
	for i, it := range items {
		it.OrderID = o.ID
		stored[i] = it
	}
	r.s.d.orderItems[o.ID] = stored
	return nil
}

// withItems must be called with mu held.
func (r *Orders) withItems(o order.Order) *order.Order {
	o.Items = append([]order.Item{}, r.s.d.orderItems[o.ID]...)
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].Name < o.Items[j].Name })
	return &o
}

func (r *Orders) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return r.withItems(o), nil
}

func (r *Orders) first(pred func(order.Order) bool) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *order.Order
	for _, o := range r.s.d.orders {
		if pred(o) && (found == nil || o.CreatedAt.After(found.CreatedAt)) {
			o := o
			found = &o
		}
	}
	if found == nil {
		return nil, order.ErrNotFound
	}
	return r.withItems(*found), nil
}

func (r *Orders) GetByNumber(_ context.Context, number string) (*order.Order, error) {
	return r.first(func(o order.Order) bool { return o.Number == number })
}

func (r *Orders) FindPendingByCart(_ context.Context, cartID string) (*order.Order, error) {
	return r.first(func(o order.Order) bool {
		return o.Status == order.StatusPending && deref(o.CartID) == cartID
	})
}

func (r *Orders) ListByUser(_ context.Context, userID string, limit, offset int) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	limit, offset = product.NormalizePage(limit, offset)
	out := []order.Order{}
	for _, o := range r.s.d.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []order.Order{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Orders) update(id string, fn func(*order.Order) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.d.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if err := fn(&o); err != nil {
		return err
	}
	o.UpdatedAt = r.s.tick()
	r.s.d.orders[id] = o
	return nil
}

func (r *Orders) UpdateStatus(_ context.Context, id string, st order.Status, ps order.PaymentStatus) error {
	return r.update(id, func(o *order.Order) error {
		o.Status, o.PaymentStatus = st, ps
		return nil
	})
}

func (r *Orders) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	return r.update(id, func(o *order.Order) error {
		if o.Status != order.StatusPending {
			return order.ErrNotPending
		}
		o.Status, o.PaymentStatus, o.PaidAt = order.StatusPaid, order.PaymentCaptured, &paidAt
		return nil
	})
}

func (r *Orders) GetItems(_ context.Context, orderID string) ([]order.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]order.Item{}, r.s.d.orderItems[orderID]...), nil
}

func (r *Orders) AddTimeline(_ context.Context, e *order.TimelineEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.orders[e.OrderID]; !ok {
		return order.ErrNotFound
	}
	e.CreatedAt = r.s.tick()
	r.s.d.timeline[e.OrderID] = append(r.s.d.timeline[e.OrderID], *e)
	return nil
}

func (r *Orders) Timeline(_ context.Context, orderID string) ([]order.TimelineEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]order.TimelineEntry{}, r.s.d.timeline[orderID]...), nil
}

func (r *Orders) CreatePayment(_ context.Context, p *order.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.payments[p.Reference]; ok {
		return order.ErrDuplicatePayment
	}
	p.CreatedAt = r.s.tick()
	r.s.d.payments[p.Reference] = *p
	return nil
}

func (r *Orders) PaymentByReference(_ context.Context, ref string) (*order.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.payments[ref]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &p, nil
}
