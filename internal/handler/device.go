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

// DeviceHandler manages the device inventory.  The ledger is the
// authoritative view of live state; the repository is its durable mirror,
// so every mutation goes ledger-first and is then written through.
type DeviceHandler struct {
	Ledger     *ledger.Ledger
	DeviceRepo *repository.DeviceRepo
}

// NewDeviceHandler constructs a DeviceHandler and panics if a dependency
// is nil.
func NewDeviceHandler(l *ledger.Ledger, repo *repository.DeviceRepo) *DeviceHandler {
	if l == nil || repo == nil {
		panic("nil dependency passed to NewDeviceHandler")
	}
	return &DeviceHandler{Ledger: l, DeviceRepo: repo}
}

// List handles GET /v1/devices and returns the live ledger snapshot.
func (h *DeviceHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Ledger.Devices())
}

// Create handles POST /v1/devices.  The device is persisted first so it
// gets a database id, then registered with the ledger as AVAILABLE.
func (h *DeviceHandler) Create(c echo.Context) error {
	var body struct {
		Name       string           `json:"name"`
		Type       string           `json:"type"`
		HourlyRate decimal.Decimal  `json:"hourly_rate"`
		MultiRate  *decimal.Decimal `json:"multi_rate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.Type == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and type are required"})
	}
	if body.HourlyRate.IsNegative() || (body.MultiRate != nil && body.MultiRate.IsNegative()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rates must be >= 0"})
	}

	d := model.Device{
		Name:       body.Name,
		Type:       body.Type,
		HourlyRate: body.HourlyRate,
		MultiRate:  body.MultiRate,
		Status:     model.StatusAvailable,
	}
	if err := h.DeviceRepo.Create(c.Request().Context(), &d); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	h.Ledger.RegisterDevice(d)
	return c.JSON(http.StatusCreated, d)
}

// EnterMaintenance handles POST /v1/devices/:id/maintenance.
func (h *DeviceHandler) EnterMaintenance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}
	if err := h.Ledger.SetMaintenance(model.KindDevice, id); err != nil {
		return ledgerError(c, err)
	}
	h.mirrorStatus(c, id, model.StatusMaintenance)
	return c.NoContent(http.StatusNoContent)
}

// ExitMaintenance handles DELETE /v1/devices/:id/maintenance.
func (h *DeviceHandler) ExitMaintenance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}
	if err := h.Ledger.ClearMaintenance(model.KindDevice, id); err != nil {
		return ledgerError(c, err)
	}
	h.mirrorStatus(c, id, model.StatusAvailable)
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/devices/:id.  History is untouched: completed
// sessions only carry name/type snapshots.
func (h *DeviceHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}
	if err := h.Ledger.RemoveDevice(id); err != nil {
		return ledgerError(c, err)
	}
	if err := h.DeviceRepo.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// mirrorStatus writes a ledger transition through to the database.  The
// mirror is informational, so a write failure is logged, not surfaced.
func (h *DeviceHandler) mirrorStatus(c echo.Context, id uint64, status model.ResourceStatus) {
	if err := h.DeviceRepo.UpdateStatus(c.Request().Context(), id, status); err != nil {
		log.Printf("device: mirror status id=%d: %v", id, err)
	}
}
