package category

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/cache"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/media"
)

type Service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
	media media.Resolver
}

func NewService(repo Repository, c cache.Cache, ttl time.Duration, m media.Resolver) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl, media: m}
}

func (s *Service) withImages(ctx context.Context, cs []Category) []Category {
	for i := range cs {
		cs[i].ImageURL = s.media.URL(ctx, cs[i].ImageKey)
	}
	return cs
}

// Children lists the categories one tier below the given ancestor chain:
// no parents lists primaries, three parents lists quaternaries.
func (s *Service) Children(ctx context.Context, typ string, parents ...string) ([]Category, error) {
	f, err := FilterFor(typ, parents...)
	if err != nil {
		return nil, err
	}
	cs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []Category{}
	}
	return s.withImages(ctx, cs), nil
}

// Page resolves a slug path tier by tier. Quaternary pages have no children.
func (s *Service) Page(ctx context.Context, typ string, slugs ...string) (*Page, error) {
	if len(slugs) == 0 {
		return nil, ErrNotFound
	}
	if len(slugs) > int(Quaternary) {
		return nil, ErrInvalidTier
	}

	var trail []Category
	var parents []string
	for _, slug := range slugs {
		f, err := FilterFor(typ, parents...)
		if err != nil {
			return nil, err
		}
		f.Slug = strings.ToLower(strings.TrimSpace(slug))
		found, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		trail = append(trail, found[0])
		parents = append(parents, found[0].ID)
	}

	children := []Category{}
	if len(parents) < int(Quaternary) {
		var err error
		if children, err = s.Children(ctx, typ, parents...); err != nil {
			return nil, err
		}
	}
	trail = s.withImages(ctx, trail)
	return &Page{Trail: trail, Current: trail[len(trail)-1], Children: children}, nil
}

func treeKey(typ string) string { return "categories:tree:" + typ }

// Tree returns the navigation tree for a type, served from cache when warm.
func (s *Service) Tree(ctx context.Context, typ string) ([]Node, error) {
	if !ValidType(typ) {
		return nil, ErrInvalidType
	}
	var nodes []Node
	if hit, err := s.cache.Get(ctx, treeKey(typ), &nodes); err != nil {
		logx.From(ctx).Warn("category tree cache read failed", zap.Error(err))
	} else if hit {
		return nodes, nil
	}

	flat, err := s.repo.ListType(ctx, typ)
	if err != nil {
		return nil, err
	}
	nodes = BuildTree(s.withImages(ctx, flat))
	if nodes == nil {
		nodes = []Node{}
	}
	if err := s.cache.Set(ctx, treeKey(typ), nodes, s.ttl); err != nil {
		logx.From(ctx).Warn("category tree cache write failed", zap.Error(err))
	}
	return nodes, nil
}

// Invalidate drops cached trees, after seeding or catalogue edits.
func (s *Service) Invalidate(ctx context.Context) error {
	keys := make([]string, len(Types))
	for i, t := range Types {
		keys[i] = treeKey(t)
	}
	return s.cache.Del(ctx, keys...)
}
