// Package seed loads a small sample catalogue for development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/db"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/product"
)

// node is a category with its children; path segments are slugs.
type node struct {
	name     string
	slug     string
	children []node
}

type variant struct {
	sku        string
	price      string
	sale       string
	stock      int
	delivery   bool
	collection bool
}

type item struct {
	category string // type/slug/slug...
	name     string
	brand    string
	desc     string
	variants []variant
}

var catalogue = map[string][]node{
	"plumbing": {
		{name: "Pipes & Fittings", slug: "pipes-fittings", children: []node{
			{name: "Copper Pipe", slug: "copper-pipe", children: []node{
				{name: "15mm Copper", slug: "15mm"},
				{name: "22mm Copper", slug: "22mm"},
			}},
			{name: "Compression Fittings", slug: "compression-fittings"},
		}},
		{name: "Taps", slug: "taps", children: []node{
			{name: "Basin Taps", slug: "basin-taps"},
			{name: "Kitchen Taps", slug: "kitchen-taps"},
		}},
	},
	"heating": {
		{name: "Boilers", slug: "boilers", children: []node{
			{name: "Combi Boilers", slug: "combi-boilers"},
		}},
		{name: "Radiators", slug: "radiators", children: []node{
			{name: "Compact Radiators", slug: "compact-radiators", children: []node{
				{name: "Single Panel", slug: "single-panel", children: []node{
					{name: "600mm High", slug: "600mm"},
				}},
				{name: "Double Panel", slug: "double-panel"},
			}},
		}},
	},
}

var products = []item{
	{"plumbing/pipes-fittings/copper-pipe/15mm", "Copper Pipe 15mm x 3m", "Wednesbury", "Table X half-hard copper tube.", []variant{
		{sku: "CP-15-3", price: "14.20", stock: 120, delivery: true, collection: true},
	}},
	{"plumbing/pipes-fittings/copper-pipe/22mm", "Copper Pipe 22mm x 3m", "Wednesbury", "Table X half-hard copper tube.", []variant{
		{sku: "CP-22-3", price: "27.80", sale: "24.99", stock: 80, delivery: true, collection: true},
	}},
	{"plumbing/pipes-fittings/compression-fittings", "Compression Straight Coupler", "Pegler", "Brass coupler, pack of two.", []variant{
		{sku: "CF-SC-15", price: "3.10", stock: 300, delivery: true, collection: true},
		{sku: "CF-SC-22", price: "4.95", stock: 240, delivery: true, collection: true},
	}},
	{"plumbing/taps/basin-taps", "Mono Basin Mixer Tap", "Bristan", "Chrome single-lever basin mixer with click waste.", []variant{
		{sku: "BT-MONO-CH", price: "59.00", sale: "49.00", stock: 25, delivery: true, collection: true},
	}},
	{"plumbing/taps/kitchen-taps", "Pull-Out Kitchen Mixer", "Bristan", "Brushed nickel mixer with pull-out spray.", []variant{
		{sku: "KT-PULL-BN", price: "129.00", stock: 10, delivery: true},
	}},
	{"heating/boilers/combi-boilers", "Combi Boiler 30kW", "Worcester", "ErP A-rated combination boiler with flue kit.", []variant{
		{sku: "CB-30", price: "899.00", stock: 4, collection: true},
	}},
	{"heating/radiators/compact-radiators/single-panel/600mm", "Single Panel Radiator 600 x 800", "Stelrad", "Type 11 compact convector radiator.", []variant{
		{sku: "RAD-11-600-800", price: "54.00", stock: 30, delivery: true, collection: true},
		{sku: "RAD-11-600-1000", price: "63.50", stock: 18, delivery: true, collection: true},
	}},
	{"heating/radiators/compact-radiators/double-panel", "Double Panel Radiator 600 x 1200", "Stelrad", "Type 22 compact convector radiator.", []variant{
		{sku: "RAD-22-600-1200", price: "118.00", sale: "104.00", stock: 0, delivery: true, collection: true},
	}},
}

// ErrAlreadySeeded is returned when the sample catalogue is already present.
var ErrAlreadySeeded = errors.New("catalogue already seeded")

// id derives a stable id so repeated runs against a fresh database
// produce the same rows.
func id(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("plumbstore:"+kind+":"+key)).String()
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

type Stats struct {
	Categories int
	Products   int
	Inventory  int
}

// Run inserts the catalogue in one transaction.
func Run(ctx context.Context, tx db.TxRunner, cats category.Repository, prods product.Repository) (Stats, error) {
	var st Stats
	first := slugify(products[0].name)
	if _, err := prods.GetBySlug(ctx, first); err == nil {
		return st, ErrAlreadySeeded
	} else if !errors.Is(err, product.ErrNotFound) {
		return st, err
	}

	err := tx.InTx(ctx, func(ctx context.Context) error {
		for _, typ := range category.Types {
			for i, n := range catalogue[typ] {
				if err := createTree(ctx, cats, typ, n, i, nil, &st); err != nil {
					return err
				}
			}
		}
		for _, it := range products {
			if err := createProduct(ctx, prods, it, &st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	logx.From(ctx).Info("catalogue seeded",
		zap.Int("categories", st.Categories), zap.Int("products", st.Products), zap.Int("inventory", st.Inventory))
	return st, nil
}

func createTree(ctx context.Context, cats category.Repository, typ string, n node, pos int, trail []string, st *Stats) error {
	path := append(append([]string{typ}, trail...), n.slug)
	c := &category.Category{
		ID:       id("category", strings.Join(path, "/")),
		Type:     typ,
		Tier:     category.Tier(len(trail) + 1),
		Name:     n.name,
		Slug:     n.slug,
		ImageKey: "categories/" + strings.Join(path, "-") + ".jpg",
		Position: pos,
	}
	var ancestors []string
	for i := range trail {
		ancestors = append(ancestors, id("category", strings.Join(path[:i+2], "/")))
	}
	for i, a := range ancestors {
		switch i {
		case 0:
			c.PrimaryID = &a
		case 1:
			c.SecondaryID = &a
		case 2:
			c.TertiaryID = &a
		}
	}
	if err := cats.Create(ctx, c); err != nil {
		return fmt.Errorf("seed category %s: %w", strings.Join(path, "/"), err)
	}
	st.Categories++
	next := append(append([]string{}, trail...), n.slug)
	for i, ch := range n.children {
		if err := createTree(ctx, cats, typ, ch, i, next, st); err != nil {
			return err
		}
	}
	return nil
}

func createProduct(ctx context.Context, prods product.Repository, it item, st *Stats) error {
	slug := slugify(it.name)
	p := &product.Product{
		ID:          id("product", slug),
		CategoryID:  id("category", it.category),
		Name:        it.name,
		Slug:        slug,
		Brand:       it.brand,
		Description: it.desc,
		ImageKey:    "products/" + slug + ".jpg",
	}
	if err := prods.Create(ctx, p); err != nil {
		return fmt.Errorf("seed product %s: %w", slug, err)
	}
	st.Products++
	for _, v := range it.variants {
		inv := &product.Inventory{
			ID:                 id("inventory", v.sku),
			ProductID:          p.ID,
			SKU:                v.sku,
			Stock:              v.stock,
			Price:              decimal.RequireFromString(v.price),
			DeliveryEligible:   v.delivery,
			CollectionEligible: v.collection,
		}
		if v.sale != "" {
			inv.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(v.sale))
		}
		if err := prods.CreateInventory(ctx, inv); err != nil {
			return fmt.Errorf("seed inventory %s: %w", v.sku, err)
		}
		st.Inventory++
	}
	return nil
}
