package product

import (
	"context"
	"strings"

	"github.com/MikeMC777/plumbstore/internal/media"
)

// MinSearchLen is the shortest accepted search term.
const MinSearchLen = 2

type Service struct {
	repo  Repository
	media media.Resolver
}

func NewService(repo Repository, m media.Resolver) *Service {
	return &Service{repo: repo, media: m}
}

func (s *Service) withImage(ctx context.Context, p *Product) {
	if s.media != nil {
		p.ImageURL = s.media.URL(ctx, p.ImageKey)
	}
}

// List pages through the catalogue, optionally searching and filtering by a
// category subtree.
func (s *Service) List(ctx context.Context, q Query) (*ListResponse, error) {
	q.Q = strings.TrimSpace(q.Q)
	q.Limit, q.Offset = NormalizePage(q.Limit, q.Offset)

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}
	for i := range items {
		s.withImage(ctx, &items[i])
	}
	return &ListResponse{Q: q.Q, Category: q.CategoryID, Limit: q.Limit, Offset: q.Offset, Items: items}, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.withImage(ctx, p)
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.withImage(ctx, p)
	return p, nil
}
