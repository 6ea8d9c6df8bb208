package order_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/plumbstore/internal/events"
	"github.com/MikeMC777/plumbstore/internal/memstore"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/product"
)

type fixture struct {
	store *memstore.Store
	rec   *events.Recorder
	svc   *order.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.Products().Create(ctx, &product.Product{ID: "p1", Name: "Pipe Cutter", Slug: "pipe-cutter"}))
	require.NoError(t, s.Products().CreateInventory(ctx, &product.Inventory{
		ID: "inv-1", ProductID: "p1", SKU: "PC-22", Stock: 5, Price: decimal.RequireFromString("12.00"), DeliveryEligible: true,
	}))
	rec := &events.Recorder{}
	return fixture{store: s, rec: rec, svc: order.NewService(s, s.Orders(), s.Products(), rec)}
}

func (f fixture) place(t *testing.T, qty int) *order.Order {
	t.Helper()
	o := &order.Order{UserID: "u1", Email: "jo@example.com", Total: decimal.RequireFromString("24.00")}
	items := []order.Item{{InventoryID: "inv-1", ProductID: "p1", Name: "Pipe Cutter", SKU: "PC-22", Quantity: qty,
		UnitPrice: decimal.RequireFromString("12.00"), Fulfillment: product.Delivery}}
	require.NoError(t, f.svc.Place(context.Background(), o, items))
	return o
}

func (f fixture) inventory(t *testing.T) *product.Inventory {
	t.Helper()
	inv, err := f.store.Products().GetInventory(context.Background(), "inv-1")
	require.NoError(t, err)
	return inv
}

func TestPlace_HoldsAndNumbers(t *testing.T) {
	f := newFixture(t)
	o := f.place(t, 2)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.Regexp(t, regexp.MustCompile(`^PS-\d{8}-[A-Z2-7]{6}$`), o.Number)
	assert.Equal(t, 2, f.inventory(t).Held)

	tl, err := f.svc.Timeline(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, tl, 1)
	assert.Equal(t, order.StatusPending, tl[0].Status)
}

func TestPay_CommitsStock(t *testing.T) {
	f := newFixture(t)
	o := f.place(t, 2)
	ctx := context.Background()

	paid, err := f.svc.Pay(ctx, o.ID, order.Payment{Provider: "sandbox", Reference: "ref-1", Amount: o.Total, Status: "succeeded"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, paid.Status)
	assert.Equal(t, order.PaymentCaptured, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)

	inv := f.inventory(t)
	assert.Equal(t, 3, inv.Stock)
	assert.Equal(t, 0, inv.Held)

	_, err = f.svc.Pay(ctx, o.ID, order.Payment{Reference: "ref-2"})
	assert.ErrorIs(t, err, order.ErrNotPending)
}

func TestChangeStatus_Lifecycle(t *testing.T) {
	f := newFixture(t)
	o := f.place(t, 1)
	ctx := context.Background()

	_, err := f.svc.ChangeStatus(ctx, o.ID, order.StatusShipped, "")
	assert.ErrorIs(t, err, order.ErrInvalidTransition)

	_, err = f.svc.ChangeStatus(ctx, o.ID, "lost", "")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = f.svc.Pay(ctx, o.ID, order.Payment{Provider: "sandbox", Reference: "r", Amount: o.Total})
	require.NoError(t, err)
	for _, st := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusCompleted} {
		got, err := f.svc.ChangeStatus(ctx, o.ID, st, "step")
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}
	_, err = f.svc.ChangeStatus(ctx, o.ID, order.StatusCanceled, "")
	assert.ErrorIs(t, err, order.ErrInvalidTransition, "completed is terminal")

	tl, err := f.svc.Timeline(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, tl, 5)
	assert.Equal(t, []string{events.OrderStatus, events.OrderStatus, events.OrderStatus}, f.rec.Types())
}

func TestCancel_PendingReleasesHold(t *testing.T) {
	f := newFixture(t)
	o := f.place(t, 2)

	got, err := f.svc.ChangeStatus(context.Background(), o.ID, order.StatusCanceled, "changed mind")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentVoided, got.PaymentStatus)
	inv := f.inventory(t)
	assert.Equal(t, 0, inv.Held)
	assert.Equal(t, 5, inv.Stock)
	assert.Equal(t, []string{events.OrderCanceled}, f.rec.Types())
}

func TestCancel_PaidRestocks(t *testing.T) {
	f := newFixture(t)
	o := f.place(t, 2)
	ctx := context.Background()
	_, err := f.svc.Pay(ctx, o.ID, order.Payment{Provider: "sandbox", Reference: "r", Amount: o.Total})
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, o.ID, order.StatusProcessing, "")
	require.NoError(t, err)

	got, err := f.svc.ChangeStatus(ctx, o.ID, order.StatusCanceled, "")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentRefunded, got.PaymentStatus)
	assert.Equal(t, 5, f.inventory(t).Stock)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to order.Status
		ok       bool
	}{
		{order.StatusPending, order.StatusPaid, true},
		{order.StatusPending, order.StatusProcessing, false},
		{order.StatusPaid, order.StatusProcessing, true},
		{order.StatusShipped, order.StatusCanceled, true},
		{order.StatusCanceled, order.StatusPending, false},
		{order.StatusCompleted, order.StatusCanceled, false},
		{order.StatusPaid, order.StatusPending, false},
	}
	for _, c := range cases {
		if got := order.CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v", c.from, c.to, got)
		}
	}
}

func TestNewNumber(t *testing.T) {
	n, err := order.NewNumber(time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, n, len("PS-20260309-XXXXXX"))
	assert.Equal(t, "PS-20260309-", n[:12])
}
