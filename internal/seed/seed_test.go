package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/memstore"
	"github.com/MikeMC777/plumbstore/internal/product"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	st, err := Run(ctx, s, s.Categories(), s.Products())
	require.NoError(t, err)
	assert.Equal(t, 15, st.Categories)
	assert.Equal(t, len(products), st.Products)
	assert.Equal(t, 10, st.Inventory)

	_, err = Run(ctx, s, s.Categories(), s.Products())
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	deep, err := s.Categories().List(ctx, category.Filter{
		Type: "heating", Tier: category.Quaternary, Slug: "600mm",
		PrimaryID:   id("category", "heating/radiators"),
		SecondaryID: id("category", "heating/radiators/compact-radiators"),
		TertiaryID:  id("category", "heating/radiators/compact-radiators/single-panel"),
	})
	require.NoError(t, err)
	require.Len(t, deep, 1)

	list, err := s.Products().List(ctx, product.Query{CategoryID: id("category", "heating/radiators")})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "copper-pipe-15mm-x-3m", slugify("Copper Pipe 15mm x 3m"))
	assert.Equal(t, "pipes-fittings", slugify("  Pipes & Fittings "))
}
