package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// MovieHandler serves the movie catalog CRUD.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	if movies == nil {
		panic("nil repository passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies}
}

type movieReq struct {
	Title           string `json:"title"`
	DurationMinutes uint32 `json:"duration_minutes"`
	Rating          string `json:"rating"`
	IsActive        *bool  `json:"is_active"`
}

func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DurationMinutes == 0 {
		return fail(c, http.StatusBadRequest, "title and duration_minutes required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := &model.Movie{
		CompanyID:       companyID(c),
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Rating:          strings.TrimSpace(req.Rating),
	}
	if err := h.Movies.Create(ctx, m); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"movie": m})
}

func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	movies, err := h.Movies.ListByCompany(ctx, companyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"movies": movies})
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"movie": m})
}

func (h *MovieHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		m.Title = title
	}
	if req.DurationMinutes > 0 {
		m.DurationMinutes = req.DurationMinutes
	}
	if rating := strings.TrimSpace(req.Rating); rating != "" {
		m.Rating = rating
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if err := h.Movies.Update(ctx, m); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"movie": m})
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.Delete(ctx, companyID(c), id); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "movie deleted"})
}
