package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-dev/shareit-backend/internal/events"
)

func TestNewContainer_Wiring(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewContainer(Config{Logger: zerolog.Nop(), Registry: reg})

	require.NotNil(t, c.Router)
	require.NotNil(t, c.BookingService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	c.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventBus_CountsBookingEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewContainer(Config{Logger: zerolog.Nop(), Registry: reg})

	require.NoError(t, c.Events.PublishJSON(events.EventBookingCreated, events.BookingPayload{BookingID: 1}))
	require.NoError(t, c.Events.PublishJSON(events.EventBookingApproved, events.BookingPayload{BookingID: 1}))
	require.NoError(t, c.Events.PublishJSON(events.EventBookingApproved, events.BookingPayload{BookingID: 2}))

	n, err := testutil.GatherAndCount(reg, "shareit_booking_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per event type")
}
