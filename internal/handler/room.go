package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// RoomHandler serves room CRUD and the generated seat map.
type RoomHandler struct {
	Rooms *repository.RoomRepo
	Seats *repository.SeatRepo
}

func NewRoomHandler(rooms *repository.RoomRepo, seats *repository.SeatRepo) *RoomHandler {
	if rooms == nil || seats == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Seats: seats}
}

type createRoomReq struct {
	Name            string   `json:"name"`
	Rows            int      `json:"rows"`
	SeatsPerRow     int      `json:"seats_per_row"`
	AccessibleSeats []string `json:"accessible_seats"` // labels like "A1"
}

const maxRoomSeats = 2000

// Create inserts the room and generates its full seat map in one
// transaction, labelling rows A..Z then AA, AB and so on.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Rows < 1 || req.SeatsPerRow < 1 {
		return fail(c, http.StatusBadRequest, "name, rows and seats_per_row required")
	}
	if req.Rows*req.SeatsPerRow > maxRoomSeats {
		return fail(c, http.StatusBadRequest, "seat map too large")
	}
	accessible := make(map[string]bool, len(req.AccessibleSeats))
	for _, label := range req.AccessibleSeats {
		accessible[strings.ToUpper(strings.TrimSpace(label))] = true
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.Rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room := &model.Room{CompanyID: companyID(c), Name: req.Name}
	if err := h.Rooms.CreateTx(ctx, tx, room); err != nil {
		return respondError(c, err)
	}

	seats := make([]model.Seat, 0, req.Rows*req.SeatsPerRow)
	for row := 0; row < req.Rows; row++ {
		label := rowLabel(row)
		for n := 1; n <= req.SeatsPerRow; n++ {
			seat := model.Seat{
				CompanyID:  room.CompanyID,
				RoomID:     room.ID,
				RowLabel:   label,
				SeatNumber: uint32(n),
			}
			seat.Accessible = accessible[seat.Label()]
			seats = append(seats, seat)
		}
	}
	if err := h.Seats.CreateBulkTx(ctx, tx, seats); err != nil {
		return respondError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true
	return ok(c, http.StatusCreated, echo.Map{"room": room, "seats_created": len(seats)})
}

func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.ListByCompany(ctx, companyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"rooms": rooms})
}

func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"room": room})
}

type updateRoomReq struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		room.Name = name
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"room": room})
}

// ListSeats returns the room's seat map.  ?active=true filters to
// active seats only.
func (h *RoomHandler) ListSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, companyID(c), id); err != nil {
		return respondError(c, err)
	}
	seats, err := h.Seats.ListByRoom(ctx, companyID(c), id, c.QueryParam("active") == "true")
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"seats": seats})
}

type seatActiveReq struct {
	IsActive bool `json:"is_active"`
}

// SetSeatActive toggles a single seat.  Position is immutable; only
// the active flag changes after the map is generated.
func (h *RoomHandler) SetSeatActive(c echo.Context) error {
	seatID, err := pathID(c, "seatID")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req seatActiveReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Seats.SetActive(ctx, companyID(c), seatID, req.IsActive); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "seat updated"})
}

// rowLabel converts a zero-based row index to its alphabetical label:
// 0 -> A, 25 -> Z, 26 -> AA.
func rowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []byte
	for {
		res = append(res, byte('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
