package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shareit-dev/shareit-backend/internal/item"
	"github.com/shareit-dev/shareit-backend/internal/user"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, q Query) ([]*Booking, error)

	// UpdateStatus moves a WAITING booking to status. It fails with ErrDecisionMade
	// when the booking is no longer WAITING, so two racing decisions cannot both win.
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// LastForItem returns the latest booking of the item that started before now.
	LastForItem(ctx context.Context, itemID int64, now time.Time) (*Short, error)
	// NextForItem returns the earliest non-rejected booking of the item starting after now.
	NextForItem(ctx context.Context, itemID int64, now time.Time) (*Short, error)
	// HasFinished reports whether the booker has a non-rejected booking of the item that ended before now.
	HasFinished(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.item_id", "i.name", "i.owner_id", "b.booker_id", "u.name",
	"b.start_date", "b.end_date", "b.status", "b.created_at", "b.updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.OwnerID, &b.BookerID, &b.BookerName,
		&b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_date", "end_date", "status").
		Values(b.ItemID, b.BookerID, b.Start, b.End, string(b.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			if pgErr.ConstraintName == "bookings_booker_id_fkey" {
				return user.ErrNotFound(b.BookerID)
			}
			return item.ErrNotFound(b.ItemID)
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound(id)
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

// buildListQuery turns q into SQL. Results are ordered newest start first.
func buildListQuery(q Query) squirrel.SelectBuilder {
	query := selectBookings()

	switch q.Audience {
	case AudienceOwner:
		query = query.Where(squirrel.Eq{"i.owner_id": q.ActorID})
	default:
		query = query.Where(squirrel.Eq{"b.booker_id": q.ActorID})
	}

	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where(squirrel.Eq{"b.status": statuses})
	}
	if q.StartBefore != nil {
		query = query.Where(squirrel.Lt{"b.start_date": *q.StartBefore})
	}
	if q.EndAfter != nil {
		query = query.Where(squirrel.Gt{"b.end_date": *q.EndAfter})
	}
	if q.EndBefore != nil {
		query = query.Where(squirrel.Lt{"b.end_date": *q.EndBefore})
	}

	query = query.OrderBy("b.start_date DESC", "b.id DESC")

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		query = query.Offset(uint64(q.Offset))
	}
	return query
}

func (r *pgxRepository) List(ctx context.Context, q Query) ([]*Booking, error) {
	sql, args, err := buildListQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": string(StatusWaiting)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: either the booking is gone or someone decided first.
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM public.bookings WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("check booking exists failed: %w", err)
	}
	if !exists {
		return ErrNotFound(id)
	}
	return ErrDecisionMade
}

func (r *pgxRepository) shortForItem(ctx context.Context, query squirrel.SelectBuilder) (*Short, error) {
	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item booking query failed: %w", err)
	}

	var s Short
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.BookerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("item booking query failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) LastForItem(ctx context.Context, itemID int64, now time.Time) (*Short, error) {
	return r.shortForItem(ctx, psql.Select("id", "booker_id").
		From("public.bookings").
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.Lt{"start_date": now}).
		OrderBy("start_date DESC"))
}

func (r *pgxRepository) NextForItem(ctx context.Context, itemID int64, now time.Time) (*Short, error) {
	return r.shortForItem(ctx, psql.Select("id", "booker_id").
		From("public.bookings").
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.Gt{"start_date": now}).
		Where(squirrel.NotEq{"status": string(StatusRejected)}).
		OrderBy("start_date ASC"))
}

func (r *pgxRepository) HasFinished(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"item_id": itemID, "booker_id": bookerID}).
		Where(squirrel.Lt{"end_date": now}).
		Where(squirrel.NotEq{"status": string(StatusRejected)})

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build finished booking query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check finished booking failed: %w", err)
	}
	return exists, nil
}
