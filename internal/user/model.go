package user

import (
	"time"

	"github.com/shareit-dev/shareit-backend/internal/pkg/apperror"
)

var ErrNegativeID = apperror.New(apperror.KindIncorrectParameter, "user id must not be negative")

// ErrNotFound is returned when no user has the given id.
func ErrNotFound(id int64) error {
	return apperror.Newf(apperror.KindNotFound, "user with id %d does not exist", id)
}

// User is the minimal view of a sharer the booking engine needs.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
