package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Item, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	const query = `
		SELECT id, owner_id, name, description, is_available, created_at
		FROM public.items
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var it Item
	if err := row.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound(id)
		}
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	return &it, nil
}
