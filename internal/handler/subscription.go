package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/model"
	"github.com/iliyamo/game-station/internal/repository"
)

// SubscriptionHandler accepts tenant plan-upgrade submissions and lets an
// admin work the pending queue.  A request transitions exactly once; a
// second review returns 409.
type SubscriptionHandler struct {
	SubRepo *repository.SubscriptionRepo
}

// NewSubscriptionHandler constructs a SubscriptionHandler and panics if a
// dependency is nil.
func NewSubscriptionHandler(repo *repository.SubscriptionRepo) *SubscriptionHandler {
	if repo == nil {
		panic("nil dependency passed to NewSubscriptionHandler")
	}
	return &SubscriptionHandler{SubRepo: repo}
}

// Submit handles POST /v1/subscriptions.  When the tenant does not supply
// a proof-of-payment reference one is generated, so support can always
// identify the transfer later.
func (h *SubscriptionHandler) Submit(c echo.Context) error {
	var body struct {
		TenantName    string          `json:"tenant_name"`
		Phone         string          `json:"phone"`
		Plan          string          `json:"plan"`
		Amount        decimal.Decimal `json:"amount"`
		PaymentMethod string          `json:"payment_method"`
		ProofRef      string          `json:"proof_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TenantName == "" || body.Plan == "" || body.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_name, plan and payment_method are required"})
	}
	if body.Amount.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be >= 0"})
	}
	if body.ProofRef == "" {
		body.ProofRef = uuid.NewString()
	}

	s := model.SubscriptionRequest{
		TenantName:    body.TenantName,
		Phone:         body.Phone,
		Plan:          body.Plan,
		Amount:        body.Amount,
		PaymentMethod: body.PaymentMethod,
		ProofRef:      body.ProofRef,
	}
	if err := h.SubRepo.Create(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, s)
}

// Pending handles GET /v1/subscriptions/pending.
func (h *SubscriptionHandler) Pending(c echo.Context) error {
	out, err := h.SubRepo.ListPending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, out)
}

// Review handles POST /v1/subscriptions/:id/review with a decision of
// approve or reject.
func (h *SubscriptionHandler) Review(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subscription id"})
	}
	var body struct {
		Decision string `json:"decision"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var approve bool
	switch body.Decision {
	case "approve":
		approve = true
	case "reject":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be approve or reject"})
	}

	s, err := h.SubRepo.Review(c.Request().Context(), id, approve)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
