package user

import (
	"context"
)

// Service resolves users for other modules. User management itself lives outside this backend.
type Service interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

type service struct {
	repo Repository
}

// NewService creates a new user Service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetByID rejects negative ids before touching storage.
func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	if id < 0 {
		return nil, ErrNegativeID
	}
	return s.repo.GetByID(ctx, id)
}
