package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/user"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Categories().Create(ctx, &category.Category{ID: "c1", Type: "heating", Tier: category.Primary, Name: "Radiators", Slug: "radiators"}))
	sub := "c1"
	require.NoError(t, s.Categories().Create(ctx, &category.Category{ID: "c2", Type: "heating", Tier: category.Secondary, Name: "Towel Rails", Slug: "towel-rails", PrimaryID: &sub}))
	require.NoError(t, s.Products().Create(ctx, &product.Product{ID: "p1", CategoryID: "c2", Name: "Chrome Rail", Slug: "chrome-rail", Brand: "Acme"}))
	require.NoError(t, s.Products().CreateInventory(ctx, &product.Inventory{ID: "i1", ProductID: "p1", SKU: "CR-500", Stock: 3, Price: decimal.RequireFromString("49.99")}))
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Products().AdjustHeld(ctx, "i1", 2))
		return s.InTx(ctx, func(context.Context) error { return boom })
	})
	require.ErrorIs(t, err, boom)

	inv, err := s.Products().GetInventory(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Held)

	require.NoError(t, s.InTx(ctx, func(ctx context.Context) error {
		return s.Products().AdjustHeld(ctx, "i1", 2)
	}))
	inv, _ = s.Products().GetInventory(ctx, "i1")
	assert.Equal(t, 2, inv.Held)
}

func TestInTx_RollbackKeepsConcurrentRegistration(t *testing.T) {
	s := New()
	users := user.NewService(s, s.Users())
	ctx := context.Background()

	inside := make(chan struct{})
	release := make(chan struct{})
	failed := make(chan error, 1)
	go func() {
		failed <- s.InTx(ctx, func(ctx context.Context) error {
			close(inside)
			<-release
			return errors.New("boom")
		})
	}()
	<-inside

	registered := make(chan error, 1)
	go func() {
		_, err := users.Register(ctx, user.Registration{
			Details:  user.Details{Email: "sam@example.com", FirstName: "Sam", LastName: "Hill"},
			Password: "long-enough",
		})
		registered <- err
	}()
	close(release)

	require.Error(t, <-failed)
	require.NoError(t, <-registered)
	u, err := s.Users().GetByEmail(ctx, "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAuthenticated, u.Role)
}

func TestProducts_ListMatchesAncestors(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	got, err := s.Products().List(ctx, product.Query{CategoryID: "c1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Inventory, 1)

	got, err = s.Products().List(ctx, product.Query{Q: "acme"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Products().List(ctx, product.Query{Q: "boiler"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProducts_StockMovements(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()
	p := s.Products()

	require.NoError(t, p.AdjustHeld(ctx, "i1", -5))
	inv, _ := p.GetInventory(ctx, "i1")
	assert.Equal(t, 0, inv.Held, "held never drops below zero")

	require.NoError(t, p.AdjustHeld(ctx, "i1", 2))
	require.NoError(t, p.Commit(ctx, "i1", 2))
	inv, _ = p.GetInventory(ctx, "i1")
	assert.Equal(t, 1, inv.Stock)
	assert.Equal(t, 0, inv.Held)

	assert.ErrorIs(t, p.Commit(ctx, "i1", 2), product.ErrInsufficientStock)
	assert.ErrorIs(t, p.Restock(ctx, "nope", 1), product.ErrInventoryNotFound)
}
