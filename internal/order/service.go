// Package order holds orders, their status lifecycle and timeline, and the
// stock side effects of moving between states.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/events"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/metrics"
	"github.com/MikeMC777/plumbstore/internal/product"
)

var ErrNotPending = errors.New("order is not awaiting payment")

const numberAttempts = 5

type Service struct {
	tx     db.TxRunner
	repo   Repository
	stock  product.Stock
	events events.Publisher
	now    func() time.Time
}

func NewService(tx db.TxRunner, repo Repository, stock product.Stock, pub events.Publisher) *Service {
	return &Service{tx: tx, repo: repo, stock: stock, events: pub, now: time.Now}
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Timeline(ctx context.Context, orderID string) ([]TimelineEntry, error) {
	return s.repo.Timeline(ctx, orderID)
}

func (s *Service) FindPendingByCart(ctx context.Context, cartID string) (*Order, error) {
	return s.repo.FindPendingByCart(ctx, cartID)
}

// HeldByCart sums the units of inventoryID held by the cart's pending
// pre-order, zero when there is none.
func (s *Service) HeldByCart(ctx context.Context, cartID, inventoryID string) (int, error) {
	o, err := s.repo.FindPendingByCart(ctx, cartID)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range o.Items {
		if it.InventoryID == inventoryID {
			n += it.Quantity
		}
	}
	return n, nil
}

func (s *Service) PaymentByReference(ctx context.Context, ref string) (*Payment, error) {
	return s.repo.PaymentByReference(ctx, ref)
}

func (s *Service) timeline(ctx context.Context, orderID string, st Status, note string) error {
	return s.repo.AddTimeline(ctx, &TimelineEntry{ID: uuid.NewString(), OrderID: orderID, Status: st, Note: note})
}

// Place stores a pending pre-order and holds its units. The number is
// regenerated when it collides with an existing one. Callers run it inside
// their own transaction and Announce once that commits.
func (s *Service) Place(ctx context.Context, o *Order, items []Item) error {
	o.ID = uuid.NewString()
	o.Status = StatusPending
	o.PaymentStatus = PaymentPending
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = o.ID
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		for attempt := 0; attempt < numberAttempts; attempt++ {
			if o.Number, err = NewNumber(s.now()); err != nil {
				return err
			}
			if err = s.repo.Create(ctx, o, items); !errors.Is(err, ErrDuplicateNumber) {
				break
			}
		}
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := s.stock.AdjustHeld(ctx, it.InventoryID, it.Quantity); err != nil {
				return err
			}
		}
		return s.timeline(ctx, o.ID, StatusPending, "pre-order placed")
	})
	if err != nil {
		return err
	}
	o.Items = items
	return nil
}

// Pay records a captured payment against a pending order, commits its held
// units to a sale and returns the updated order. Like Place, it is
// announced by the caller.
func (s *Service) Pay(ctx context.Context, id string, p Payment) (*Order, error) {
	var out *Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != StatusPending {
			return ErrNotPending
		}
		p.ID = uuid.NewString()
		p.OrderID = o.ID
		if err := s.repo.CreatePayment(ctx, &p); err != nil {
			return err
		}
		if err := s.repo.MarkPaid(ctx, o.ID, s.now().UTC()); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := s.stock.Commit(ctx, it.InventoryID, it.Quantity); err != nil {
				return fmt.Errorf("commit %s: %w", it.SKU, err)
			}
		}
		if err := s.timeline(ctx, o.ID, StatusPaid, "payment "+p.Reference+" captured"); err != nil {
			return err
		}
		out, err = s.repo.GetByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeStatus transitions the order and announces the change.
func (s *Service) ChangeStatus(ctx context.Context, id string, to Status, note string) (*Order, error) {
	o, err := s.Transition(ctx, id, to, note)
	if err != nil {
		return nil, err
	}
	typ := events.OrderStatus
	if to == StatusCanceled {
		typ = events.OrderCanceled
	}
	s.Announce(ctx, typ, o)
	return o, nil
}

// Transition moves an order along its lifecycle and records it on the
// timeline. Canceling an unpaid order releases its held units; canceling a
// paid or processing order puts the units back in stock.
func (s *Service) Transition(ctx context.Context, id string, to Status, note string) (*Order, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return nil, err
	}

	var out *Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}

		ps := o.PaymentStatus
		if to == StatusCanceled {
			switch o.Status {
			case StatusPending:
				for _, it := range o.Items {
					if err := s.stock.AdjustHeld(ctx, it.InventoryID, -it.Quantity); err != nil {
						return err
					}
				}
				ps = PaymentVoided
			case StatusPaid, StatusProcessing:
				for _, it := range o.Items {
					if err := s.stock.Restock(ctx, it.InventoryID, it.Quantity); err != nil {
						return err
					}
				}
				ps = PaymentRefunded
			}
		}

		if err := s.repo.UpdateStatus(ctx, o.ID, to, ps); err != nil {
			return err
		}
		if err := s.timeline(ctx, o.ID, to, note); err != nil {
			return err
		}
		out, err = s.repo.GetByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Announce publishes an order event. Call it after commit. A lost event is
// logged and never fails the request.
func (s *Service) Announce(ctx context.Context, typ string, o *Order) {
	metrics.OrderEvents.WithLabelValues(string(o.Status)).Inc()
	err := s.events.Publish(ctx, events.Event{
		Type:    typ,
		OrderID: o.ID,
		Number:  o.Number,
		Status:  string(o.Status),
		Total:   o.Total.StringFixed(2),
		At:      s.now().UTC(),
	})
	if err != nil {
		logx.From(ctx).Error("order event not published",
			zap.String("type", typ), zap.String("order_id", o.ID), zap.Error(err))
	}
}
