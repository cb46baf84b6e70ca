package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayanda-dev/studio-booking/internal/model"
	"github.com/ayanda-dev/studio-booking/internal/repository"
	"github.com/ayanda-dev/studio-booking/internal/schedule"
)

// SessionHandler exposes the session catalog: slot creation,
// availability lookups and schedule listings.  Sessions are identified
// by their (date, time, kind) slot, so creating the same slot twice
// returns the existing session rather than an error.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Waitlist *repository.WaitlistRepo
}

// NewSessionHandler constructs a SessionHandler.  Both repositories
// must be non-nil.
func NewSessionHandler(sessions *repository.SessionRepo, waitlist *repository.WaitlistRepo) *SessionHandler {
	if sessions == nil || waitlist == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions, Waitlist: waitlist}
}

// Ensure handles POST /v1/sessions.  The body carries the slot
// identity (date, time, kind) and optionally a capacity override and
// notes.  The call is idempotent: repeating it for the same slot
// returns the session that already exists, with created=false.
func (h *SessionHandler) Ensure(c echo.Context) error {
	var body struct {
		Date     string `json:"date"`
		Time     string `json:"time"`
		Kind     string `json:"kind"`
		Capacity int    `json:"capacity"`
		Notes    string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	startTime, err := schedule.ParseTime(body.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	kind := model.Kind(body.Kind)
	if body.Kind == "" {
		kind = model.KindSingle
	}
	if !kind.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown session kind"})
	}
	capacity := body.Capacity
	if capacity <= 0 {
		capacity = model.DefaultCapacity(kind)
	}
	var notes *string
	if body.Notes != "" {
		notes = &body.Notes
	}
	ctx := c.Request().Context()
	id, err := h.Sessions.Ensure(ctx, body.Date, startTime, kind, capacity, notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	avail, err := h.Sessions.Availability(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, avail)
}

// Availability handles GET /v1/sessions/:id/availability.  It reports
// capacity, booked seats and the derived remaining count for one
// session.
func (h *SessionHandler) Availability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	avail, err := h.Sessions.Availability(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, avail)
}

// ListDay handles GET /v1/sessions/day?date=YYYY-MM-DD.  It returns
// every session on the given date ordered by start time, regardless of
// status, so the day schedule shows full and cancelled slots too.
func (h *SessionHandler) ListDay(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	sessions, err := h.Sessions.ListDay(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "sessions": sessions})
}

// ListOpen handles GET /v1/sessions/open?limit=N.  It lists upcoming
// sessions that still have seats, soonest first, for "what is
// available" flows.
func (h *SessionHandler) ListOpen(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}
	sessions, err := h.Sessions.ListOpen(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions})
}

// WaitlistEntries handles GET /v1/sessions/:id/waitlist.  Entries come
// back in arrival order so an operator can promote the longest waiting
// client first.
func (h *SessionHandler) WaitlistEntries(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.Availability(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	entries, err := h.Waitlist.ListBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": id, "waitlist": entries})
}
