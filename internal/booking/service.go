package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shareit-dev/shareit-backend/internal/clock"
	"github.com/shareit-dev/shareit-backend/internal/events"
	"github.com/shareit-dev/shareit-backend/internal/item"
	"github.com/shareit-dev/shareit-backend/internal/pkg/apperror"
	"github.com/shareit-dev/shareit-backend/internal/pkg/pagination"
	"github.com/shareit-dev/shareit-backend/internal/user"
)

// CreateRequest carries a booking request. Nil times are rejected by validation.
type CreateRequest struct {
	ItemID int64
	Start  *time.Time
	End    *time.Time
}

type Service interface {
	Create(ctx context.Context, bookerID int64, req CreateRequest) (*Booking, error)
	Update(ctx context.Context, ownerID, bookingID int64, approved *bool) (*Booking, error)
	GetByID(ctx context.Context, userID, bookingID int64) (*Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]*Booking, error)

	// ItemBookings and HasFinishedBooking serve the item module: the last/next
	// booking shown to an item owner and the right to comment on an item.
	ItemBookings(ctx context.Context, itemID int64) (*ItemBookings, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64) (bool, error)
}

// EventPublisher receives booking status transitions.
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

type service struct {
	repo        Repository
	userService user.Service
	itemService item.Service
	publisher   EventPublisher
	clock       clock.Clock
	pageMode    pagination.Mode
	logger      zerolog.Logger
}

func NewService(
	repo Repository,
	userService user.Service,
	itemService item.Service,
	publisher EventPublisher,
	clk clock.Clock,
	pageMode pagination.Mode,
	logger zerolog.Logger,
) Service {
	return &service{
		repo:        repo,
		userService: userService,
		itemService: itemService,
		publisher:   publisher,
		clock:       clk,
		pageMode:    pageMode,
		logger:      logger.With().Str("module", "booking").Logger(),
	}
}

// validate runs checks in order and returns the first failure.
func validate(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) timeChecks(start, end *time.Time) []func() error {
	return []func() error{
		func() error {
			if start == nil || end == nil {
				return ErrEmptyTime
			}
			return nil
		},
		func() error {
			if end.Before(*start) {
				return ErrEndBeforeStart
			}
			return nil
		},
		func() error {
			if end.Equal(*start) {
				return ErrEndEqualsStart
			}
			return nil
		},
		func() error {
			if start.Before(clock.TruncateToMinute(s.clock.Now())) {
				return ErrStartInPast
			}
			return nil
		},
	}
}

func (s *service) Create(ctx context.Context, bookerID int64, req CreateRequest) (*Booking, error) {
	booker, err := s.userService.GetByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	it, err := s.itemService.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	checks := []func() error{
		func() error {
			if !it.Available {
				return ErrItemUnavailable
			}
			return nil
		},
		func() error {
			if it.OwnerID == bookerID {
				return ErrOwnItem
			}
			return nil
		},
	}
	if err := validate(append(checks, s.timeChecks(req.Start, req.End)...)...); err != nil {
		return nil, err
	}

	b := &Booking{
		ItemID:     it.ID,
		ItemName:   it.Name,
		OwnerID:    it.OwnerID,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Start:      *req.Start,
		End:        *req.End,
		Status:     StatusWaiting,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", b.ID).
		Int64("item_id", b.ItemID).
		Int64("booker_id", b.BookerID).
		Msg("booking created")
	s.publish(events.EventBookingCreated, b, bookerID)

	return b, nil
}

func (s *service) Update(ctx context.Context, ownerID, bookingID int64, approved *bool) (*Booking, error) {
	if approved == nil {
		return nil, ErrApprovedRequired
	}

	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = validate(
		func() error {
			if b.OwnerID != ownerID {
				return ErrNotItemOwner
			}
			return nil
		},
		func() error {
			if b.Status.IsTerminal() {
				return ErrDecisionMade
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	next, event := StatusRejected, events.EventBookingRejected
	if *approved {
		next, event = StatusApproved, events.EventBookingApproved
	}

	// The repository only moves WAITING bookings, so a concurrent decision surfaces as ErrDecisionMade.
	if err := s.repo.UpdateStatus(ctx, b.ID, next); err != nil {
		return nil, err
	}
	b.Status = next

	s.logger.Info().
		Int64("booking_id", b.ID).
		Int64("owner_id", ownerID).
		Str("status", string(next)).
		Msg("booking decided")
	s.publish(event, b, ownerID)

	return b, nil
}

func (s *service) GetByID(ctx context.Context, userID, bookingID int64) (*Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.BookerID != userID && b.OwnerID != userID {
		return nil, ErrNotBookerOrOwner
	}
	return b, nil
}

// getBooking loads a booking. A missing negative id is reported as an incorrect parameter.
func (s *service) getBooking(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if id < 0 && apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrNegativeID
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ListByBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]*Booking, error) {
	return s.list(ctx, AudienceBooker, bookerID, state, from, size)
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]*Booking, error) {
	return s.list(ctx, AudienceOwner, ownerID, state, from, size)
}

// stateFilters narrows a query to one state. Booker and owner listings share it.
var stateFilters = map[State]func(q *Query, now time.Time){
	StateAll: func(*Query, time.Time) {},
	StateFuture: func(q *Query, _ time.Time) {
		q.Statuses = []Status{StatusWaiting, StatusApproved}
	},
	StateRejected: func(q *Query, _ time.Time) {
		q.Statuses = []Status{StatusRejected}
	},
	StateWaiting: func(q *Query, _ time.Time) {
		q.Statuses = []Status{StatusWaiting}
	},
	StateCurrent: func(q *Query, now time.Time) {
		q.StartBefore = &now
		q.EndAfter = &now
	},
	StatePast: func(q *Query, now time.Time) {
		q.EndBefore = &now
	},
}

func (s *service) list(ctx context.Context, audience Audience, actorID int64, stateStr string, from, size int) ([]*Booking, error) {
	if _, err := s.userService.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	window, err := pagination.Resolve(from, size, s.pageMode)
	if err != nil {
		return nil, err
	}

	state, err := ParseState(stateStr)
	if err != nil {
		return nil, err
	}

	q := Query{
		Audience: audience,
		ActorID:  actorID,
		Offset:   window.Offset,
		Limit:    window.Limit,
	}
	stateFilters[state](&q, s.clock.Now())

	return s.repo.List(ctx, q)
}

func (s *service) ItemBookings(ctx context.Context, itemID int64) (*ItemBookings, error) {
	now := s.clock.Now()

	last, err := s.repo.LastForItem(ctx, itemID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.repo.NextForItem(ctx, itemID, now)
	if err != nil {
		return nil, err
	}
	return &ItemBookings{Last: last, Next: next}, nil
}

func (s *service) HasFinishedBooking(ctx context.Context, itemID, bookerID int64) (bool, error) {
	return s.repo.HasFinished(ctx, itemID, bookerID, s.clock.Now())
}

func (s *service) publish(eventType string, b *Booking, actorID int64) {
	if s.publisher == nil {
		return
	}

	payload := events.BookingPayload{
		BookingID: b.ID,
		ItemID:    b.ItemID,
		OwnerID:   b.OwnerID,
		BookerID:  b.BookerID,
		Status:    string(b.Status),
		Start:     b.Start,
		End:       b.End,
		ActorID:   actorID,
	}
	if err := s.publisher.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", b.ID).Msg("publish event error")
	}
}
