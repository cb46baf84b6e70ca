package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ayanda-dev/studio-booking/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo
// instance.  Load balancers and monitoring probe this endpoint to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSessions registers the session catalog endpoints under /v1.
// The schedule read endpoints are the hot path for the chat flows, so
// the caller may pass a caching middleware to apply to them; a nil
// cache applies nothing.
func RegisterSessions(e *echo.Echo, s *handler.SessionHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/sessions")
	// Slot creation is idempotent by (date, time, kind).
	g.POST("", s.Ensure)
	if cache != nil {
		g.GET("/day", s.ListDay, cache)
		g.GET("/open", s.ListOpen, cache)
	} else {
		g.GET("/day", s.ListDay)
		g.GET("/open", s.ListOpen)
	}
	// Availability is never cached: booking decisions read it.
	g.GET("/:id/availability", s.Availability)
	g.GET("/:id/waitlist", s.WaitlistEntries)
}

// RegisterBookings registers the reservation endpoints under /v1.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler) {
	g := e.Group("/v1/bookings")
	g.POST("", b.Book)
	g.POST("/recurring", b.BookRecurring)
	g.PUT("/:id/cancel", b.Cancel)
	g.PUT("/:id/confirm", b.Confirm)
	g.PUT("/:id/status", b.MarkStatus)
}

// RegisterClients registers the client registry endpoints under /v1.
func RegisterClients(e *echo.Echo, c *handler.ClientHandler) {
	g := e.Group("/v1/clients")
	g.POST("", c.Upsert)
	g.GET("", c.List)
	g.GET("/:wa/next-booking", c.NextBooking)
}
