package booking

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-dev/shareit-backend/internal/db"
	"github.com/shareit-dev/shareit-backend/internal/pkg/apperror"
)

// testPool connects to TEST_DB_DSN and resets the tables. Tests are skipped without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.bookings, public.items, public.users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO public.users (name, email) VALUES ($1, $2) RETURNING id",
		name, name+"@shareit.test").Scan(&id)
	require.NoError(t, err)
	return id
}

func seedItem(t *testing.T, pool *pgxpool.Pool, ownerID int64, name string, available bool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO public.items (owner_id, name, description, is_available) VALUES ($1, $2, '', $3) RETURNING id",
		ownerID, name, available).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestPgxRepository(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPgxRepository(pool)

	ownerID := seedUser(t, pool, "Owner")
	bookerID := seedUser(t, pool, "Booker")
	drillID := seedItem(t, pool, ownerID, "Drill", true)

	now := time.Now().UTC().Truncate(time.Second)
	past := &Booking{ItemID: drillID, BookerID: bookerID, Start: now.Add(-72 * time.Hour), End: now.Add(-48 * time.Hour), Status: StatusApproved}
	current := &Booking{ItemID: drillID, BookerID: bookerID, Start: now.Add(-24 * time.Hour), End: now.Add(24 * time.Hour), Status: StatusApproved}
	future := &Booking{ItemID: drillID, BookerID: bookerID, Start: now.Add(48 * time.Hour), End: now.Add(72 * time.Hour), Status: StatusWaiting}
	require.NoError(t, repo.Create(ctx, past))
	require.NoError(t, repo.Create(ctx, current))
	require.NoError(t, repo.Create(ctx, future))

	ids := func(bookings []*Booking) []int64 {
		out := make([]int64, len(bookings))
		for i, b := range bookings {
			out[i] = b.ID
		}
		return out
	}

	t.Run("get joins item and booker", func(t *testing.T) {
		got, err := repo.GetByID(ctx, future.ID)
		require.NoError(t, err)
		assert.Equal(t, "Drill", got.ItemName)
		assert.Equal(t, "Booker", got.BookerName)
		assert.Equal(t, ownerID, got.OwnerID)
		assert.Equal(t, StatusWaiting, got.Status)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("create with unknown item", func(t *testing.T) {
		err := repo.Create(ctx, &Booking{ItemID: 9999, BookerID: bookerID, Start: now, End: now.Add(time.Hour), Status: StatusWaiting})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := repo.List(ctx, Query{Audience: AudienceBooker, ActorID: bookerID, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []int64{future.ID, current.ID, past.ID}, ids(got))

		got, err = repo.List(ctx, Query{Audience: AudienceBooker, ActorID: bookerID, Offset: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{current.ID}, ids(got))

		got, err = repo.List(ctx, Query{Audience: AudienceBooker, ActorID: bookerID, Offset: 10, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	for _, tt := range []struct {
		name     string
		audience Audience
		actorID  int64
	}{
		{"booker", AudienceBooker, bookerID},
		{"owner", AudienceOwner, ownerID},
	} {
		t.Run("state filters for "+tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, Query{Audience: tt.audience, ActorID: tt.actorID, StartBefore: &now, EndAfter: &now, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, []int64{current.ID}, ids(got), "current")

			got, err = repo.List(ctx, Query{Audience: tt.audience, ActorID: tt.actorID, EndBefore: &now, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, []int64{past.ID}, ids(got), "past")

			got, err = repo.List(ctx, Query{Audience: tt.audience, ActorID: tt.actorID, Statuses: []Status{StatusWaiting}, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, []int64{future.ID}, ids(got), "waiting")
		})
	}

	t.Run("owner listing excludes other owners", func(t *testing.T) {
		got, err := repo.List(ctx, Query{Audience: AudienceOwner, ActorID: bookerID, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("item last and next", func(t *testing.T) {
		last, err := repo.LastForItem(ctx, drillID, now)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, current.ID, last.ID)

		next, err := repo.NextForItem(ctx, drillID, now)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, future.ID, next.ID)

		none, err := repo.NextForItem(ctx, drillID, now.Add(96*time.Hour))
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("has finished", func(t *testing.T) {
		ok, err := repo.HasFinished(ctx, drillID, bookerID, now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasFinished(ctx, drillID, ownerID, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("status moves once", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, future.ID, StatusRejected))

		err := repo.UpdateStatus(ctx, future.ID, StatusApproved)
		assert.ErrorIs(t, err, ErrDecisionMade)

		got, err := repo.GetByID(ctx, future.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, got.Status)

		err = repo.UpdateStatus(ctx, 9999, StatusApproved)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})
}
