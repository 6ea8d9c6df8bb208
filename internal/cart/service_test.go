package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/media"
	"github.com/MikeMC777/plumbstore/internal/memstore"
	"github.com/MikeMC777/plumbstore/internal/product"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memstore.Store
	svc   *cart.Service
}

// Two products: a valve (delivery+collection, on sale) and a boiler
// (collection only).
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	p := s.Products()
	require.NoError(t, p.Create(ctx, &product.Product{ID: "p-valve", Name: "Ball Valve 15mm", Slug: "ball-valve-15mm", ImageKey: "valve.jpg"}))
	require.NoError(t, p.CreateInventory(ctx, &product.Inventory{
		ID: "inv-valve", ProductID: "p-valve", SKU: "BV-15", Stock: 10,
		Price: dec("8.00"), SalePrice: decimal.NewNullDecimal(dec("6.50")),
		DeliveryEligible: true, CollectionEligible: true,
	}))
	require.NoError(t, p.Create(ctx, &product.Product{ID: "p-boiler", Name: "Combi Boiler 30kW", Slug: "combi-boiler-30kw"}))
	require.NoError(t, p.CreateInventory(ctx, &product.Inventory{
		ID: "inv-boiler", ProductID: "p-boiler", SKU: "CB-30", Stock: 2, Held: 1,
		Price: dec("899.00"), CollectionEligible: true,
	}))
	return fixture{store: s, svc: cart.NewService(s, s.Carts(), p, nil, media.Public{BaseURL: "/media"})}
}

var anon = cart.Owner{SessionID: "sess-1"}

func TestGet_EmptyWhenMissing(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Get(context.Background(), anon)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.NotNil(t, c.Items)
	assert.True(t, c.Total.IsZero())
}

func TestAdd_CreatesCartAndIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 2, Fulfillment: product.Delivery})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, dec("13.00").Equal(c.Total), "sale price applies: %s", c.Total)
	assert.Equal(t, "/media/valve.jpg", c.Items[0].Product.ImageURL)

	c, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: product.Delivery})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	c, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: product.Collection})
	require.NoError(t, err)
	assert.Len(t, c.Items, 2, "same inventory, different fulfillment is a separate line")
	assert.Equal(t, 4, c.ItemCount())
	assert.True(t, cart.Total(c.Items).Equal(c.Total))
	assert.True(t, dec("26.00").Equal(c.Total))
}

func TestAdd_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 0, Fulfillment: product.Delivery})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: "drone"})
	assert.ErrorIs(t, err, cart.ErrInvalidFulfillment)

	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 1, Fulfillment: product.Delivery})
	assert.ErrorIs(t, err, cart.ErrFulfillmentUnavailable)

	// stock 2, held 1: only one available
	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 2, Fulfillment: product.Collection})
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)

	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "missing", Quantity: 1, Fulfillment: product.Delivery})
	assert.ErrorIs(t, err, product.ErrInventoryNotFound)

	_, err = f.svc.Add(ctx, cart.Owner{}, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: product.Delivery})
	assert.ErrorIs(t, err, cart.ErrNoOwner)

	// a failed add leaves no cart behind
	c, err := f.svc.Get(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, c.ID)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: product.Delivery})
	require.NoError(t, err)
	itemID := c.Items[0].ID

	c, err = f.svc.UpdateQuantity(ctx, anon, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.True(t, dec("26.00").Equal(c.Total))

	_, err = f.svc.UpdateQuantity(ctx, anon, itemID, 11)
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)

	_, err = f.svc.UpdateQuantity(ctx, anon, itemID, -1)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	_, err = f.svc.UpdateQuantity(ctx, cart.Owner{SessionID: "someone-else"}, itemID, 2)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	c, err = f.svc.UpdateQuantity(ctx, anon, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.Total.IsZero())
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: product.Delivery})
	require.NoError(t, err)
	c, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 1, Fulfillment: product.Collection})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	c, err = f.svc.Remove(ctx, anon, c.Items[1].ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, dec("6.50").Equal(c.Total))

	_, err = f.svc.Remove(ctx, anon, "nope")
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestSetFulfillment_MergesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 2, Fulfillment: product.Delivery})
	require.NoError(t, err)
	c, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 3, Fulfillment: product.Collection})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	c, err = f.svc.SetFulfillment(ctx, anon, c.Items[0].ID, product.Collection)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, product.Collection, c.Items[0].Fulfillment)
	assert.False(t, c.HasDelivery())

	c, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 1, Fulfillment: product.Collection})
	require.NoError(t, err)
	_, err = f.svc.SetFulfillment(ctx, anon, c.Items[1].ID, product.Delivery)
	assert.ErrorIs(t, err, cart.ErrFulfillmentUnavailable)
}

func TestMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := cart.Owner{UserID: "u-1"}

	// no user cart: the anonymous one is re-owned
	_, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 1, Fulfillment: product.Delivery})
	require.NoError(t, err)
	require.NoError(t, f.svc.Merge(ctx, anon.SessionID, me.UserID))
	c, err := f.svc.Get(ctx, me)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	// both exist: matching lines are summed, the anonymous cart is removed
	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 2, Fulfillment: product.Delivery})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 1, Fulfillment: product.Collection})
	require.NoError(t, err)
	require.NoError(t, f.svc.Merge(ctx, anon.SessionID, me.UserID))

	c, err = f.svc.Get(ctx, me)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.True(t, dec("918.50").Equal(c.Total), "total=%s", c.Total)

	left, err := f.svc.Get(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, left.Items)

	// nothing to merge is fine
	require.NoError(t, f.svc.Merge(ctx, "no-such-session", me.UserID))
}

type heldBy map[string]int

func (h heldBy) HeldByCart(_ context.Context, _, inventoryID string) (int, error) {
	return h[inventoryID], nil
}

func TestAdd_CountsOwnHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// one of the two boilers is held; the cart holding it may still take both
	svc := cart.NewService(f.store, f.store.Carts(), f.store.Products(), heldBy{"inv-boiler": 1}, nil)
	c, err := svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 2, Fulfillment: product.Collection})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)

	_, err = f.svc.Add(ctx, cart.Owner{SessionID: "sess-2"}, cart.AddInput{InventoryID: "inv-boiler", Quantity: 2, Fulfillment: product.Collection})
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)
}

func TestConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-valve", Quantity: 3, Fulfillment: product.Delivery})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, anon, cart.AddInput{InventoryID: "inv-boiler", Quantity: 1, Fulfillment: product.Collection})
	require.NoError(t, err)

	require.NoError(t, f.svc.Consume(ctx, anon, []cart.Line{
		{InventoryID: "inv-valve", Fulfillment: product.Delivery, Quantity: 2},
		{InventoryID: "inv-valve", Fulfillment: product.Collection, Quantity: 5},
	}))
	c, err := f.svc.Get(ctx, anon)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.True(t, dec("905.50").Equal(c.Total), "total=%s", c.Total)

	require.NoError(t, f.svc.Consume(ctx, anon, []cart.Line{
		{InventoryID: "inv-valve", Fulfillment: product.Delivery, Quantity: 1},
		{InventoryID: "inv-boiler", Fulfillment: product.Collection, Quantity: 1},
	}))
	_, err = f.store.Carts().Find(ctx, anon)
	assert.ErrorIs(t, err, cart.ErrNotFound)

	// nothing to consume from
	require.NoError(t, f.svc.Consume(ctx, anon, []cart.Line{{InventoryID: "inv-valve", Fulfillment: product.Delivery, Quantity: 1}}))
}

func TestTotal(t *testing.T) {
	inv := &product.Inventory{Price: dec("10.00"), SalePrice: decimal.NewNullDecimal(dec("12.00"))}
	items := []cart.Item{
		{Quantity: 3, Inventory: inv},
		{Quantity: 2, UnitPrice: dec("1.25")},
	}
	assert.True(t, dec("32.50").Equal(cart.Total(items)), "a sale price above list is ignored")
	assert.True(t, cart.Total(nil).IsZero())
}
