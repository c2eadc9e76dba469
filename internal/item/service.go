package item

import (
	"context"
)

// Service resolves items for the booking engine.
type Service interface {
	GetByID(ctx context.Context, id int64) (*Item, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetByID resolves an item. Any missing id, negative included, is NotFound.
func (s *service) GetByID(ctx context.Context, id int64) (*Item, error) {
	if id < 0 {
		return nil, ErrNotFound(id)
	}
	return s.repo.GetByID(ctx, id)
}
