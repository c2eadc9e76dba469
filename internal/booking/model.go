package booking

import (
	"strings"
	"time"

	"github.com/shareit-dev/shareit-backend/internal/pkg/apperror"
)

var (
	ErrItemUnavailable  = apperror.New(apperror.KindValidation, "item is already booked or unavailable")
	ErrOwnItem          = apperror.New(apperror.KindIncorrectParameter, "you own this item, booking it is not possible")
	ErrEmptyTime        = apperror.New(apperror.KindValidation, "booking start and end must be set")
	ErrEndBeforeStart   = apperror.New(apperror.KindValidation, "booking end cannot be before its start")
	ErrEndEqualsStart   = apperror.New(apperror.KindValidation, "booking end cannot be equal to its start")
	ErrStartInPast      = apperror.New(apperror.KindValidation, "booking can start no earlier than the current time")
	ErrApprovedRequired = apperror.New(apperror.KindMissingArgument, "approved must be specified")
	ErrNotItemOwner     = apperror.New(apperror.KindNotFound, "you are not the owner of the item")
	ErrDecisionMade     = apperror.New(apperror.KindValidation, "booking was already approved or rejected, the decision cannot be changed")
	ErrNotBookerOrOwner = apperror.New(apperror.KindIncorrectParameter, "you are neither the author of the booking nor the owner of the item")
	ErrNegativeID       = apperror.New(apperror.KindIncorrectParameter, "booking id must not be negative")
)

// ErrNotFound is returned when no booking has the given id.
func ErrNotFound(id int64) error {
	return apperror.Newf(apperror.KindNotFound, "booking with id %d does not exist", id)
}

// ErrUnknownState is returned for a state filter that cannot be parsed.
func ErrUnknownState(s string) error {
	return apperror.Newf(apperror.KindUnknownState, "Unknown state: %s", s)
}

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	// StatusCanceled is reserved; no operation sets it.
	StatusCanceled Status = "CANCELED"
)

// IsTerminal reports whether the owner has already decided on the booking.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Booking is a request by a booker to use an item for [Start, End).
// Item, owner and booker details are joined in from their tables on read.
type Booking struct {
	ID         int64
	ItemID     int64
	ItemName   string
	OwnerID    int64
	BookerID   int64
	BookerName string
	Start      time.Time
	End        time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// State is a query-time classification of bookings. It is never stored.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState parses s case-insensitively.
func ParseState(s string) (State, error) {
	switch st := State(strings.ToUpper(strings.TrimSpace(s))); st {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	default:
		return "", ErrUnknownState(s)
	}
}

// Audience selects whose bookings a listing returns.
type Audience int

const (
	AudienceBooker Audience = iota
	AudienceOwner
)

// Query describes a filtered, paged listing. Nil time bounds are not applied.
type Query struct {
	Audience    Audience
	ActorID     int64
	Statuses    []Status
	StartBefore *time.Time // start < t
	EndAfter    *time.Time // end > t
	EndBefore   *time.Time // end < t
	Offset      int
	Limit       int
}

// Short is the compact booking reference shown on items.
type Short struct {
	ID       int64
	BookerID int64
}

// ItemBookings holds the closest past and upcoming bookings of an item.
type ItemBookings struct {
	Last *Short
	Next *Short
}
