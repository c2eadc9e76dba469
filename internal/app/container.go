package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/shareit-dev/shareit-backend/internal/api"
	"github.com/shareit-dev/shareit-backend/internal/booking"
	"github.com/shareit-dev/shareit-backend/internal/clock"
	"github.com/shareit-dev/shareit-backend/internal/events"
	"github.com/shareit-dev/shareit-backend/internal/item"
	"github.com/shareit-dev/shareit-backend/internal/metrics"
	"github.com/shareit-dev/shareit-backend/internal/pkg/pagination"
	"github.com/shareit-dev/shareit-backend/internal/ratelimit"
	"github.com/shareit-dev/shareit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	Logger         zerolog.Logger
	Clock          clock.Clock
	PaginationMode pagination.Mode
	// Registry receives the application collectors and backs /metrics.
	// Defaults to a fresh registry.
	Registry *prometheus.Registry
	Limiter  ratelimit.Limiter
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	Events         *events.Bus
	BookingService booking.Service
	ItemService    item.Service
	UserService    user.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	m := metrics.New(cfg.Registry)
	bus := newEventBus(cfg.Logger, m)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo)

	// Item Module
	itemRepo := item.NewPgxRepository(cfg.DBPool)
	itemService := item.NewService(itemRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(
		bookingRepo,
		userService,
		itemService,
		bus,
		cfg.Clock,
		cfg.PaginationMode,
		cfg.Logger,
	)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         cfg.Logger,
		BookingService: bookingService,
		Metrics:        m,
		Gatherer:       cfg.Registry,
		Limiter:        cfg.Limiter,
	})

	return &Container{
		Router:         router,
		Events:         bus,
		BookingService: bookingService,
		ItemService:    itemService,
		UserService:    userService,
	}
}

// newEventBus wires the default subscribers: an audit log line and a counter per event.
func newEventBus(logger zerolog.Logger, m *metrics.Metrics) *events.Bus {
	bus := events.NewBus(func(event *events.Event, err error) {
		logger.Error().Err(err).Str("event_type", event.Type).Msg("event handler error")
	})

	audit := func(event *events.Event) error {
		var p events.BookingPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		m.IncBookingEvent(event.Type)
		logger.Info().
			Str("event_type", event.Type).
			Int64("booking_id", p.BookingID).
			Int64("item_id", p.ItemID).
			Int64("actor_id", p.ActorID).
			Str("status", p.Status).
			Msg("booking event")
		return nil
	}

	for _, t := range []string{events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected} {
		bus.Subscribe(t, audit)
	}
	return bus
}
