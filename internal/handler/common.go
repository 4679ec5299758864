package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-station/internal/ledger"
	"github.com/iliyamo/game-station/internal/repository"
)

// parseID extracts a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parsePositiveInt parses a query parameter expected to be >= 1.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid number")
	}
	return n, nil
}

// ledgerError translates ledger and repository sentinel errors into the
// HTTP responses handlers return.  Anything unrecognized becomes a 500 so
// no failure is ever silently swallowed.
func ledgerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrResourceNotFound),
		errors.Is(err, repository.ErrDeviceNotFound),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrSubscriptionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrSessionNotFound),
		errors.Is(err, ledger.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrResourceUnavailable),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidConfiguration):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
