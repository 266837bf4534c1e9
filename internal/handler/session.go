package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/service"
)

// SessionHandler serves session scheduling, status transitions and the
// availability read.
type SessionHandler struct {
	Sessions     *repository.SessionRepo
	Movies       *repository.MovieRepo
	Rooms        *repository.RoomRepo
	Availability *service.AvailabilityService
}

func NewSessionHandler(sessions *repository.SessionRepo, movies *repository.MovieRepo, rooms *repository.RoomRepo, availability *service.AvailabilityService) *SessionHandler {
	if sessions == nil || movies == nil || rooms == nil || availability == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions, Movies: movies, Rooms: rooms, Availability: availability}
}

type sessionReq struct {
	MovieID        uint64    `json:"movie_id"`
	RoomID         uint64    `json:"room_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	BasePriceCents uint64    `json:"base_price_cents"`
}

// Create schedules a session after checking that the movie and room
// exist and are active, the interval is well-formed, and no
// non-canceled session occupies the room in [starts_at, ends_at).
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.MovieID == 0 || req.RoomID == 0 || req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return fail(c, http.StatusBadRequest, "movie_id, room_id, starts_at and ends_at required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return respondError(c, service.ErrEndBeforeStart)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cid := companyID(c)

	movie, err := h.Movies.GetByID(ctx, cid, req.MovieID)
	if err != nil {
		return respondError(c, err)
	}
	if !movie.IsActive {
		return fail(c, http.StatusUnprocessableEntity, "movie is inactive")
	}
	room, err := h.Rooms.GetByID(ctx, cid, req.RoomID)
	if err != nil {
		return respondError(c, err)
	}
	if !room.IsActive {
		return fail(c, http.StatusUnprocessableEntity, "room is inactive")
	}
	overlaps, err := h.Sessions.FindOverlapping(ctx, cid, req.RoomID, 0, req.StartsAt, req.EndsAt)
	if err != nil {
		return respondError(c, err)
	}
	if len(overlaps) > 0 {
		return respondError(c, service.ErrRoomOccupied)
	}

	s := &model.Session{
		CompanyID:      cid,
		MovieID:        req.MovieID,
		RoomID:         req.RoomID,
		StartsAt:       req.StartsAt.UTC(),
		EndsAt:         req.EndsAt.UTC(),
		BasePriceCents: req.BasePriceCents,
	}
	if err := h.Sessions.Create(ctx, s); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"session": s})
}

func (h *SessionHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	sessions, err := h.Sessions.ListByCompany(ctx, companyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"sessions": sessions})
}

func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"session": s})
}

// Update reschedules a SCHEDULED session, re-running the overlap check
// against the (possibly new) room and interval.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cid := companyID(c)

	s, err := h.Sessions.GetByID(ctx, cid, id)
	if err != nil {
		return respondError(c, err)
	}
	if s.Status != model.SessionScheduled {
		return respondError(c, service.ErrSessionNotSellable)
	}
	if req.MovieID != 0 {
		s.MovieID = req.MovieID
	}
	if req.RoomID != 0 {
		s.RoomID = req.RoomID
	}
	if !req.StartsAt.IsZero() {
		s.StartsAt = req.StartsAt.UTC()
	}
	if !req.EndsAt.IsZero() {
		s.EndsAt = req.EndsAt.UTC()
	}
	if req.BasePriceCents > 0 {
		s.BasePriceCents = req.BasePriceCents
	}
	if !s.EndsAt.After(s.StartsAt) {
		return respondError(c, service.ErrEndBeforeStart)
	}
	overlaps, err := h.Sessions.FindOverlapping(ctx, cid, s.RoomID, s.ID, s.StartsAt, s.EndsAt)
	if err != nil {
		return respondError(c, err)
	}
	if len(overlaps) > 0 {
		return respondError(c, service.ErrRoomOccupied)
	}
	if err := h.Sessions.Update(ctx, s); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"session": s})
}

type sessionStatusReq struct {
	Status string `json:"status"`
}

// allowed session status transitions
var sessionTransitions = map[string][]string{
	model.SessionScheduled:  {model.SessionInProgress, model.SessionCanceled},
	model.SessionInProgress: {model.SessionCompleted},
}

// SetStatus applies a status transition.
func (h *SessionHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req sessionStatusReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return fail(c, http.StatusBadRequest, "status required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cid := companyID(c)

	s, err := h.Sessions.GetByID(ctx, cid, id)
	if err != nil {
		return respondError(c, err)
	}
	legal := false
	for _, next := range sessionTransitions[s.Status] {
		if next == req.Status {
			legal = true
			break
		}
	}
	if !legal {
		return fail(c, http.StatusUnprocessableEntity, "illegal status transition")
	}
	if err := h.Sessions.UpdateStatus(ctx, cid, id, req.Status); err != nil {
		return respondError(c, err)
	}
	s.Status = req.Status
	return ok(c, http.StatusOK, echo.Map{"session": s})
}

// GetAvailability resolves the seat map state for the session.
func (h *SessionHandler) GetAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	avail, err := h.Availability.Resolve(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"availability": avail})
}
