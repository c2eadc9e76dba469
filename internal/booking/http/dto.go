package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shareit-dev/shareit-backend/internal/booking"
)

// localLayout is the zone-less timestamp format sharing clients send, read as local time.
const localLayout = "2006-01-02T15:04:05"

// DateTime accepts RFC 3339 and zone-less ISO timestamps.
type DateTime struct {
	time.Time
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.ParseInLocation(localLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	d.Time = t
	return nil
}

// CreateBookingBody is the payload for POST /bookings.
// Start and End are optional here so the service can report them as a validation failure.
type CreateBookingBody struct {
	ItemID int64     `json:"itemId"`
	Start  *DateTime `json:"start"`
	End    *DateTime `json:"end"`
}

func (b *CreateBookingBody) ToRequest() booking.CreateRequest {
	req := booking.CreateRequest{ItemID: b.ItemID}
	if b.Start != nil {
		req.Start = &b.Start.Time
	}
	if b.End != nil {
		req.End = &b.End.Time
	}
	return req
}

// ByIDRequest binds the booking id path parameter. Negative ids are passed through.
type ByIDRequest struct {
	ID int64 `uri:"bookingId"`
}

// DecisionQuery binds ?approved= on PATCH /bookings/:bookingId.
type DecisionQuery struct {
	Approved *bool `form:"approved"`
}

// ListBookingsQuery defines query parameters for listing bookings.
// Range checks on From and Size live in pagination.Resolve.
type ListBookingsQuery struct {
	State string `form:"state,default=ALL"`
	From  int    `form:"from,default=0"`
	Size  int    `form:"size,default=10"`
}

type BookerTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ItemTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Booker BookerTag `json:"booker"`
	Item   ItemTag   `json:"item"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: string(b.Status),
		Booker: BookerTag{ID: b.BookerID, Name: b.BookerName},
		Item:   ItemTag{ID: b.ItemID, Name: b.ItemName},
	}
}

func NewBookingListResponse(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}
