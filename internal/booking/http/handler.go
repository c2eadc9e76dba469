package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareit-dev/shareit-backend/internal/auth"
	"github.com/shareit-dev/shareit-backend/internal/booking"
	"github.com/shareit-dev/shareit-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// POST /bookings
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// PATCH /bookings/:bookingId?approved=
func (h *Handler) Update(c *gin.Context) {
	var uri ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id", "details": err.Error()})
		return
	}

	var query DecisionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved must be true or false", "details": err.Error()})
		return
	}

	b, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, query.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// GET /bookings/:bookingId
func (h *Handler) Get(c *gin.Context) {
	var uri ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id", "details": err.Error()})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), auth.GetUserID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// GET /bookings
func (h *Handler) ListByBooker(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	bookings, err := h.service.ListByBooker(c.Request.Context(), auth.GetUserID(c), q.State, q.From, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingListResponse(bookings))
}

// GET /bookings/owner
func (h *Handler) ListByOwner(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	bookings, err := h.service.ListByOwner(c.Request.Context(), auth.GetUserID(c), q.State, q.From, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingListResponse(bookings))
}
