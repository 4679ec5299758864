package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-station/internal/model"
	"github.com/iliyamo/game-station/internal/report"
	"github.com/iliyamo/game-station/internal/repository"
)

// ReportHandler serves the aggregated dashboards and the session export.
// All endpoints accept the same range=today|yesterday|week|month filter as
// the history listing; an absent or unknown range means the current month.
type ReportHandler struct {
	SessionRepo *repository.SessionRepo
}

// NewReportHandler constructs a ReportHandler and panics if a dependency
// is nil.
func NewReportHandler(sessions *repository.SessionRepo) *ReportHandler {
	if sessions == nil {
		panic("nil dependency passed to NewReportHandler")
	}
	return &ReportHandler{SessionRepo: sessions}
}

// rangeSessions loads the completed sessions covered by the request's
// range filter.
func (h *ReportHandler) rangeSessions(c echo.Context) ([]model.CompletedSession, time.Time, time.Time, error) {
	now := time.Now().UTC()
	start, end, ok := repository.RangeBounds(c.QueryParam("range"), now)
	if !ok {
		start, end, _ = repository.RangeBounds("month", now)
	}
	// ListBetween is inclusive on both ends; back the exclusive upper
	// bound off by a second so midnight rows land in the right day.
	end = end.Add(-time.Second)
	sessions, err := h.SessionRepo.ListBetween(c.Request().Context(), start, end)
	return sessions, start, end, err
}

// Summary handles GET /v1/reports/summary.
func (h *ReportHandler) Summary(c echo.Context) error {
	sessions, start, end, err := h.rangeSessions(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	sum := report.Summarize(sessions, start, end)
	return c.JSON(http.StatusOK, echo.Map{
		"summary":         sum,
		"peak_hour_label": report.HourLabel(sum.PeakHour),
		"from":            start,
		"to":              end,
	})
}

// Daily handles GET /v1/reports/daily.
func (h *ReportHandler) Daily(c echo.Context) error {
	sessions, _, _, err := h.rangeSessions(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, report.DailyRevenue(sessions))
}

// Devices handles GET /v1/reports/devices.
func (h *ReportHandler) Devices(c echo.Context) error {
	sessions, _, _, err := h.rangeSessions(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, report.DevicePerformance(sessions))
}

// Hourly handles GET /v1/reports/hourly.
func (h *ReportHandler) Hourly(c echo.Context) error {
	sessions, _, _, err := h.rangeSessions(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, report.HourlyUsage(sessions))
}

// Export handles GET /v1/reports/export?format=csv|xlsx and streams the
// session export as a file download.
func (h *ReportHandler) Export(c echo.Context) error {
	sessions, _, _, err := h.rangeSessions(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var buf bytes.Buffer
	switch c.QueryParam("format") {
	case "", "csv":
		if err := report.WriteCSV(&buf, sessions); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sessions.csv"`)
		return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
	case "xlsx":
		if err := report.WriteXLSX(&buf, sessions); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sessions.xlsx"`)
		return c.Blob(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be csv or xlsx"})
}
