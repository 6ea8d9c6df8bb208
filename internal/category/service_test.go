package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/plumbstore/internal/cache"
	"github.com/MikeMC777/plumbstore/internal/media"
)

type stubRepo struct {
	items     []Category
	typeCalls int
}

func (s *stubRepo) Create(_ context.Context, c *Category) error {
	s.items = append(s.items, *c)
	return nil
}

func (s *stubRepo) List(_ context.Context, f Filter) ([]Category, error) {
	var out []Category
	for _, c := range s.items {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	SortSiblings(out)
	return out, nil
}

func (s *stubRepo) ListType(_ context.Context, typ string) ([]Category, error) {
	s.typeCalls++
	var out []Category
	for _, c := range s.items {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

func ptr(s string) *string { return &s }

// plumbing > pipe-fittings > compression > elbows ; plumbing > valves ; heating > boilers
func fixture() *stubRepo {
	return &stubRepo{items: []Category{
		{ID: "p1", Type: "plumbing", Tier: Primary, Name: "Pipe & Fittings", Slug: "pipe-fittings", Position: 1},
		{ID: "p2", Type: "plumbing", Tier: Primary, Name: "Valves", Slug: "valves", Position: 2, ImageKey: "cat/valves.jpg"},
		{ID: "s1", Type: "plumbing", Tier: Secondary, Name: "Compression", Slug: "compression", PrimaryID: ptr("p1")},
		{ID: "s2", Type: "plumbing", Tier: Secondary, Name: "Copper Pipe", Slug: "copper-pipe", PrimaryID: ptr("p1")},
		{ID: "t1", Type: "plumbing", Tier: Tertiary, Name: "Elbows", Slug: "elbows", PrimaryID: ptr("p1"), SecondaryID: ptr("s1")},
		{ID: "q1", Type: "plumbing", Tier: Quaternary, Name: "15mm", Slug: "15mm", PrimaryID: ptr("p1"), SecondaryID: ptr("s1"), TertiaryID: ptr("t1")},
		{ID: "h1", Type: "heating", Tier: Primary, Name: "Boilers", Slug: "boilers"},
	}}
}

func newService(repo Repository) *Service {
	return NewService(repo, cache.NewMemory(), time.Minute, media.Public{BaseURL: "/media"})
}

func TestChildren_ByTier(t *testing.T) {
	s := newService(fixture())
	ctx := context.Background()

	prim, err := s.Children(ctx, "plumbing")
	require.NoError(t, err)
	require.Len(t, prim, 2)
	assert.Equal(t, "pipe-fittings", prim[0].Slug)
	assert.Equal(t, "/media/cat/valves.jpg", prim[1].ImageURL)

	sec, err := s.Children(ctx, "plumbing", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"compression", "copper-pipe"}, slugs(sec))

	quat, err := s.Children(ctx, "plumbing", "p1", "s1", "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"15mm"}, slugs(quat))

	none, err := s.Children(ctx, "plumbing", "p2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestChildren_Errors(t *testing.T) {
	s := newService(fixture())
	_, err := s.Children(context.Background(), "garden")
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = s.Children(context.Background(), "plumbing", "a", "b", "c", "d")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestPage_ResolvesSlugPath(t *testing.T) {
	s := newService(fixture())

	page, err := s.Page(context.Background(), "plumbing", "pipe-fittings", "compression")
	require.NoError(t, err)
	assert.Equal(t, []string{"pipe-fittings", "compression"}, slugs(page.Trail))
	assert.Equal(t, "s1", page.Current.ID)
	assert.Equal(t, []string{"elbows"}, slugs(page.Children))

	leaf, err := s.Page(context.Background(), "plumbing", "pipe-fittings", "compression", "elbows", "15mm")
	require.NoError(t, err)
	assert.Equal(t, "q1", leaf.Current.ID)
	assert.Empty(t, leaf.Children)
}

func TestPage_UnknownSlug(t *testing.T) {
	s := newService(fixture())

	_, err := s.Page(context.Background(), "plumbing", "pipe-fittings", "elbows")
	assert.True(t, errors.Is(err, ErrNotFound), "elbows is tertiary, not secondary: %v", err)

	_, err = s.Page(context.Background(), "plumbing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTree_BuildsAndCaches(t *testing.T) {
	repo := fixture()
	s := newService(repo)

	got, err := s.Tree(context.Background(), "plumbing")
	require.NoError(t, err)

	want := []Node{
		{Category: Category{ID: "p1", Slug: "pipe-fittings"}, Children: []Node{
			{Category: Category{ID: "s1", Slug: "compression"}, Children: []Node{
				{Category: Category{ID: "t1", Slug: "elbows"}, Children: []Node{
					{Category: Category{ID: "q1", Slug: "15mm"}},
				}},
			}},
			{Category: Category{ID: "s2", Slug: "copper-pipe"}},
		}},
		{Category: Category{ID: "p2", Slug: "valves"}},
	}
	onlyIDs := cmpopts.IgnoreFields(Category{}, "Type", "Tier", "Name", "Description", "ImageKey", "ImageURL",
		"Position", "PrimaryID", "SecondaryID", "TertiaryID")
	if diff := cmp.Diff(want, got, onlyIDs); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Tree(context.Background(), "plumbing")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.typeCalls, "second call should be served from cache")

	require.NoError(t, s.Invalidate(context.Background()))
	_, err = s.Tree(context.Background(), "plumbing")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.typeCalls)
}

func TestBuildTree_DropsOrphans(t *testing.T) {
	nodes := BuildTree([]Category{
		{ID: "a", Tier: Primary, Name: "A"},
		{ID: "x", Tier: Secondary, Name: "X", PrimaryID: ptr("missing")},
	})
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Children)
}

func slugs(cs []Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Slug
	}
	return out
}
