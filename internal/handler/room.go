package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/ledger"
	"github.com/iliyamo/game-station/internal/model"
	"github.com/iliyamo/game-station/internal/repository"
)

// RoomHandler manages the room inventory and the reservation flow.  A
// reservation holds a room without accruing cost; billing starts only when
// the reservation is activated into a session.
type RoomHandler struct {
	Ledger   *ledger.Ledger
	RoomRepo *repository.RoomRepo
}

// NewRoomHandler constructs a RoomHandler and panics if a dependency is nil.
func NewRoomHandler(l *ledger.Ledger, repo *repository.RoomRepo) *RoomHandler {
	if l == nil || repo == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Ledger: l, RoomRepo: repo}
}

// List handles GET /v1/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Ledger.Rooms())
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var body struct {
		Name       string          `json:"name"`
		HourlyRate decimal.Decimal `json:"hourly_rate"`
		Capacity   int             `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a capacity >= 1 are required"})
	}
	if body.HourlyRate.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hourly_rate must be >= 0"})
	}

	r := model.Room{
		Name:       body.Name,
		HourlyRate: body.HourlyRate,
		Capacity:   body.Capacity,
		Status:     model.StatusAvailable,
	}
	if err := h.RoomRepo.Create(c.Request().Context(), &r); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.Ledger.RegisterRoom(r)
	return c.JSON(http.StatusCreated, r)
}

// Reserve handles POST /v1/rooms/:id/reserve.  The response carries the
// token the customer presents to activate or cancel the hold.
func (h *RoomHandler) Reserve(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		Customer   string `json:"customer"`
		GuestCount int    `json:"guest_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	token, err := h.Ledger.ReserveRoom(id, body.Customer, body.GuestCount)
	if err != nil {
		return ledgerError(c, err)
	}
	h.mirrorState(c, id)
	return c.JSON(http.StatusCreated, echo.Map{"reservation_token": token})
}

// ActivateReservation handles POST /v1/reservations/:token/activate and
// starts billing on the reserved room.
func (h *RoomHandler) ActivateReservation(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing reservation token"})
	}
	s, err := h.Ledger.ActivateReservation(token)
	if err != nil {
		return ledgerError(c, err)
	}
	h.mirrorState(c, s.ResourceID)
	return c.JSON(http.StatusCreated, s)
}

// CancelReservation handles DELETE /v1/reservations/:token.
func (h *RoomHandler) CancelReservation(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing reservation token"})
	}
	if err := h.Ledger.CancelReservation(token); err != nil {
		return ledgerError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EnterMaintenance handles POST /v1/rooms/:id/maintenance.
func (h *RoomHandler) EnterMaintenance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Ledger.SetMaintenance(model.KindRoom, id); err != nil {
		return ledgerError(c, err)
	}
	h.mirrorState(c, id)
	return c.NoContent(http.StatusNoContent)
}

// ExitMaintenance handles DELETE /v1/rooms/:id/maintenance.
func (h *RoomHandler) ExitMaintenance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Ledger.ClearMaintenance(model.KindRoom, id); err != nil {
		return ledgerError(c, err)
	}
	h.mirrorState(c, id)
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Ledger.RemoveRoom(id); err != nil {
		return ledgerError(c, err)
	}
	if err := h.RoomRepo.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// mirrorState writes the room's current ledger state through to the
// database.  Mirror failures are logged, not surfaced.
func (h *RoomHandler) mirrorState(c echo.Context, id uint64) {
	r, err := h.Ledger.Room(id)
	if err != nil {
		return
	}
	if err := h.RoomRepo.UpdateState(c.Request().Context(), id, r.Status, r.Occupancy); err != nil {
		log.Printf("room: mirror state id=%d: %v", id, err)
	}
}
