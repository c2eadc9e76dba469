package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. Every route requires the sharer id header.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, middleware ...gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(middleware...)
	{
		group.POST("", h.Create)
		group.GET("", h.ListByBooker)
		group.GET("/owner", h.ListByOwner)
		group.GET("/:bookingId", h.Get)
		group.PATCH("/:bookingId", h.Update)
	}
}
