package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-station/internal/ledger"
	"github.com/iliyamo/game-station/internal/model"
	"github.com/iliyamo/game-station/internal/queue"
	"github.com/iliyamo/game-station/internal/repository"
	queue_publisher "github.com/iliyamo/game-station/internal/service"
)

// SessionHandler drives the start/stop lifecycle of billing sessions and
// exposes the live and historical session views.
type SessionHandler struct {
	Ledger      *ledger.Ledger
	DeviceRepo  *repository.DeviceRepo
	RoomRepo    *repository.RoomRepo
	SessionRepo *repository.SessionRepo
}

// NewSessionHandler constructs a SessionHandler and panics if a dependency
// is nil.
func NewSessionHandler(l *ledger.Ledger, devices *repository.DeviceRepo, rooms *repository.RoomRepo, sessions *repository.SessionRepo) *SessionHandler {
	if l == nil || devices == nil || rooms == nil || sessions == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Ledger: l, DeviceRepo: devices, RoomRepo: rooms, SessionRepo: sessions}
}

// StartDevice handles POST /v1/devices/:id/sessions.  The optional
// rate_mode selects the multi-session rate; it fails with 400 when the
// device has no multi rate configured.
func (h *SessionHandler) StartDevice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}
	var body struct {
		Customer string `json:"customer"`
		RateMode string `json:"rate_mode"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	mode := model.RateSingle
	switch body.RateMode {
	case "", "single", string(model.RateSingle):
	case "multi", string(model.RateMulti):
		mode = model.RateMulti
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rate_mode must be single or multi"})
	}

	s, err := h.Ledger.StartDeviceSession(id, body.Customer, mode)
	if err != nil {
		return ledgerError(c, err)
	}
	if err := h.DeviceRepo.UpdateStatus(c.Request().Context(), id, model.StatusInUse); err != nil {
		log.Printf("session: mirror device status id=%d: %v", id, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// StartRoom handles POST /v1/rooms/:id/sessions.  guest_count must be
// within [1, capacity].
func (h *SessionHandler) StartRoom(c echo.Context) error {
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

	s, err := h.Ledger.StartRoomSession(id, body.Customer, body.GuestCount)
	if err != nil {
		return ledgerError(c, err)
	}
	if err := h.RoomRepo.UpdateState(c.Request().Context(), id, model.StatusInUse, s.GuestCount); err != nil {
		log.Printf("session: mirror room state id=%d: %v", id, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// activeSessionView is an ActiveSession plus its live duration and cost,
// recomputed against "now" on every request rather than cached.
type activeSessionView struct {
	model.ActiveSession
	Duration string `json:"duration"`
	Cost     string `json:"cost"`
}

// ListActive handles GET /v1/sessions/active.
func (h *SessionHandler) ListActive(c echo.Context) error {
	now := time.Now().UTC()
	sessions := h.Ledger.ListActive()
	out := make([]activeSessionView, 0, len(sessions))
	for _, s := range sessions {
		d, cost := ledger.ElapsedCost(s, now)
		out = append(out, activeSessionView{
			ActiveSession: s,
			Duration:      d.Truncate(time.Second).String(),
			Cost:          cost.StringFixed(2),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out, "as_of": now})
}

// End handles POST /v1/sessions/:id/end.  On success the completed record
// is returned and a session.completed event is published in the background;
// broker failures never block the checkout.
func (h *SessionHandler) End(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session id"})
	}
	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	// Snapshot the session before ending it so we know which resource row
	// to mirror afterwards; completed records deliberately do not point
	// back at live resources.
	active, err := h.Ledger.ActiveSession(id)
	if err != nil {
		return ledgerError(c, err)
	}

	rec, err := h.Ledger.EndSession(c.Request().Context(), id, body.PaymentMethod)
	if err != nil {
		return ledgerError(c, err)
	}
	h.mirrorReleased(c, active.Kind, active.ResourceID)

	go func(rec model.CompletedSession) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishSessionCompleted(ctx, queue.SessionCompletedEvent{
			SessionID:       rec.ID,
			ResourceName:    rec.ResourceName,
			ResourceType:    rec.ResourceType,
			Customer:        rec.Customer,
			StartedAt:       rec.StartedAt.Format(time.RFC3339),
			EndedAt:         rec.EndedAt.Format(time.RFC3339),
			DurationSeconds: int64(rec.Duration / time.Second),
			Cost:            rec.Cost.StringFixed(2),
			PaymentMethod:   rec.PaymentMethod,
		})
	}(rec)

	return c.JSON(http.StatusOK, rec)
}

// History handles GET /v1/sessions with range/q/page filters.  Page size
// is fixed at 15.
func (h *SessionHandler) History(c echo.Context) error {
	page := 1
	if p := c.QueryParam("page"); p != "" {
		if n, err := parsePositiveInt(p); err == nil {
			page = n
		}
	}
	q := repository.SessionSearchQuery{
		Range: c.QueryParam("range"),
		Query: c.QueryParam("q"),
		Page:  page,
	}
	sessions, total, err := h.SessionRepo.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"sessions":  sessions,
		"total":     total,
		"page":      page,
		"page_size": repository.DefaultPageSize,
	})
}

// mirrorReleased restores the resource's database row after the ledger
// has released it.  Mirror failures are logged, not surfaced.
func (h *SessionHandler) mirrorReleased(c echo.Context, kind model.ResourceKind, id uint64) {
	ctx := c.Request().Context()
	switch kind {
	case model.KindRoom:
		if err := h.RoomRepo.UpdateState(ctx, id, model.StatusAvailable, 0); err != nil {
			log.Printf("session: mirror room state id=%d: %v", id, err)
		}
	default:
		if err := h.DeviceRepo.UpdateStatus(ctx, id, model.StatusAvailable); err != nil {
			log.Printf("session: mirror device status id=%d: %v", id, err)
		}
	}
}
