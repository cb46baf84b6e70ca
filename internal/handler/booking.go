package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayanda-dev/studio-booking/internal/booking"
	"github.com/ayanda-dev/studio-booking/internal/model"
	"github.com/ayanda-dev/studio-booking/internal/repository"
)

// BookingHandler exposes the reservation engine over HTTP: single
// bookings, recurring batches, cancellation and attendance updates.
// All capacity accounting happens inside the service; the handler only
// validates input and maps outcomes to status codes.
type BookingHandler struct {
	Service *booking.Service
	Clients *repository.ClientRepo

	// DefaultWeeks is the recurring horizon used when a request does
	// not say how many weeks to book.
	DefaultWeeks int
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(svc *booking.Service, clients *repository.ClientRepo, defaultWeeks int) *BookingHandler {
	if svc == nil || clients == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	if defaultWeeks < 1 {
		defaultWeeks = 4
	}
	return &BookingHandler{Service: svc, Clients: clients, DefaultWeeks: defaultWeeks}
}

// resolveClient turns a request's client reference into a client id.
// Callers may send either a numeric client_id or a wa_number; when a
// wa_number is given the client record is created on first contact.
func (h *BookingHandler) resolveClient(c echo.Context, clientID uint64, waNumber, name string) (uint64, error) {
	if clientID != 0 {
		if _, err := h.Clients.GetByID(c.Request().Context(), clientID); err != nil {
			return 0, err
		}
		return clientID, nil
	}
	if waNumber == "" {
		return 0, repository.ErrClientNotFound
	}
	return h.Clients.UpsertByWa(c.Request().Context(), waNumber, name)
}

// Book handles POST /v1/bookings.  The slot is named by (date, time,
// kind); the session is created on first use.  A full or closed
// session yields a 200 response with status "waitlisted" rather than
// an error, because joining the waitlist is a successful outcome for
// the caller.
func (h *BookingHandler) Book(c echo.Context) error {
	var body struct {
		ClientID uint64 `json:"client_id"`
		WaNumber string `json:"wa_number"`
		Name     string `json:"name"`
		Date     string `json:"date"`
		Time     string `json:"time"`
		Kind     string `json:"kind"`
		Seats    int    `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Date == "" || body.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
	}
	kind := model.Kind(body.Kind)
	if body.Kind == "" {
		kind = model.KindSingle
	}
	if !kind.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown session kind"})
	}
	clientID, err := h.resolveClient(c, body.ClientID, body.WaNumber, body.Name)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			if body.ClientID != 0 {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id or wa_number is required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	res, err := h.Service.BookClient(c.Request().Context(), clientID, body.Date, body.Time, kind, body.Seats)
	if err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "seats exceed session capacity"})
		}
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	status := http.StatusCreated
	if res.Status != booking.StatusBooked {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}

// BookRecurring handles POST /v1/bookings/recurring.  Weekly patterns
// are expanded over the requested number of weeks and each occurrence
// is booked independently; a full week never blocks the rest of the
// batch.  A storage failure mid-batch returns 500 with the outcomes
// committed so far, since those bookings already exist.
func (h *BookingHandler) BookRecurring(c echo.Context) error {
	var body struct {
		ClientID  uint64                 `json:"client_id"`
		WaNumber  string                 `json:"wa_number"`
		Name      string                 `json:"name"`
		Patterns  []booking.PatternInput `json:"patterns"`
		Weeks     int                    `json:"weeks"`
		Kind      string                 `json:"kind"`
		Seats     int                    `json:"seats"`
		StartFrom string                 `json:"start_from"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Patterns) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patterns is required"})
	}
	kind := model.Kind(body.Kind)
	if body.Kind == "" {
		kind = model.KindSingle
	}
	if !kind.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown session kind"})
	}
	clientID, err := h.resolveClient(c, body.ClientID, body.WaNumber, body.Name)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			if body.ClientID != 0 {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id or wa_number is required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	weeks := body.Weeks
	if weeks <= 0 {
		weeks = h.DefaultWeeks
	}
	results, err := h.Service.RecurringBook(c.Request().Context(), clientID, body.Patterns, weeks, kind, body.Seats, body.StartFrom)
	if err != nil {
		if len(results) > 0 {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":   "database error",
				"partial": true,
				"results": results,
			})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"results": results})
}

// Cancel handles PUT /v1/bookings/:id/cancel.  Cancelling an already
// cancelled booking returns 200 with status "already_cancelled" and
// releases no further seats.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	res, err := h.Service.Cancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, res)
}

// Confirm handles PUT /v1/bookings/:id/confirm, marking a booked seat
// as confirmed attendance.  Confirming twice is a no-op.
func (h *BookingHandler) Confirm(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Service.Confirm(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, booking.ErrNotConfirmable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not in a confirmable status"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": model.BookingConfirmed})
}

// MarkStatus handles PUT /v1/bookings/:id/status with a body of
// {"status": "sick" | "no_show" | "rejected"}.  These outcomes release
// the booking's seats exactly once, same as cancellation.
func (h *BookingHandler) MarkStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.AbsenceStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendance status"})
	}
	res, err := h.Service.MarkAbsent(c.Request().Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, res)
}
