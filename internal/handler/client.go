package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayanda-dev/studio-booking/internal/repository"
)

// ClientHandler manages the client registry.  Clients are keyed by
// WhatsApp number, which is normalized to digits before any lookup so
// "+27 82 123 4567" and "27821234567" hit the same row.
type ClientHandler struct {
	Clients  *repository.ClientRepo
	Bookings *repository.BookingRepo
}

func NewClientHandler(clients *repository.ClientRepo, bookings *repository.BookingRepo) *ClientHandler {
	if clients == nil || bookings == nil {
		panic("nil repository passed to NewClientHandler")
	}
	return &ClientHandler{Clients: clients, Bookings: bookings}
}

// Upsert handles POST /v1/clients.  Registering an existing WhatsApp
// number updates the name (when supplied) instead of failing, so chat
// onboarding can be replayed safely.
func (h *ClientHandler) Upsert(c echo.Context) error {
	var body struct {
		WaNumber string `json:"wa_number"`
		Name     string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if repository.NormalizeWa(body.WaNumber) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "wa_number is required"})
	}
	ctx := c.Request().Context()
	id, err := h.Clients.UpsertByWa(ctx, body.WaNumber, body.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	client, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, client)
}

// List handles GET /v1/clients?q=&limit=&offset=.  An empty q lists
// everyone; otherwise names are matched case-insensitively.
func (h *ClientHandler) List(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}
	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset"})
		}
		offset = n
	}
	clients, err := h.Clients.FindByName(c.Request().Context(), c.QueryParam("q"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": clients})
}

// NextBooking handles GET /v1/clients/:wa/next-booking, returning the
// client's soonest future seated booking.  The reminder and "cancel my
// next class" chat flows both start here.
func (h *ClientHandler) NextBooking(c echo.Context) error {
	wa := repository.NormalizeWa(c.Param("wa"))
	if wa == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid wa number"})
	}
	ctx := c.Request().Context()
	exists, err := h.Clients.ExistsByWa(ctx, wa)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	next, err := h.Bookings.NextUpcomingByWa(ctx, wa)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no upcoming booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, next)
}
