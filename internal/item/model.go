package item

import (
	"time"

	"github.com/shareit-dev/shareit-backend/internal/pkg/apperror"
)

// ErrNotFound is returned when no item has the given id.
func ErrNotFound(id int64) error {
	return apperror.Newf(apperror.KindNotFound, "item with id %d does not exist", id)
}

// Item is a thing a user shares. Only the owner and the availability flag matter for bookings.
type Item struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Available   bool
	CreatedAt   time.Time
}
