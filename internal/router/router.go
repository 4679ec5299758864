// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-station/internal/handler"
)

// Handlers bundles every handler the router wires up.  Keeping them in one
// struct keeps main's registration call short and makes missing wiring a
// compile error instead of a nil panic at request time.
type Handlers struct {
	Devices       *handler.DeviceHandler
	Rooms         *handler.RoomHandler
	Sessions      *handler.SessionHandler
	Reports       *handler.ReportHandler
	Subscriptions *handler.SubscriptionHandler
}

// RegisterRoutes registers the health check plus the full /v1 API surface.
// cached wraps read-heavy report/inventory GETs with the Redis response
// cache; pass an empty slice to disable caching.
func RegisterRoutes(e *echo.Echo, h Handlers, cached ...echo.MiddlewareFunc) {
	// Health endpoint for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")

	// Device inventory and maintenance flow.
	v1.GET("/devices", h.Devices.List, cached...)
	v1.POST("/devices", h.Devices.Create)
	v1.POST("/devices/:id/maintenance", h.Devices.EnterMaintenance)
	v1.DELETE("/devices/:id/maintenance", h.Devices.ExitMaintenance)
	v1.DELETE("/devices/:id", h.Devices.Delete)

	// Room inventory, maintenance and the reservation flow.
	v1.GET("/rooms", h.Rooms.List, cached...)
	v1.POST("/rooms", h.Rooms.Create)
	v1.POST("/rooms/:id/reserve", h.Rooms.Reserve)
	v1.POST("/reservations/:token/activate", h.Rooms.ActivateReservation)
	v1.DELETE("/reservations/:token", h.Rooms.CancelReservation)
	v1.POST("/rooms/:id/maintenance", h.Rooms.EnterMaintenance)
	v1.DELETE("/rooms/:id/maintenance", h.Rooms.ExitMaintenance)
	v1.DELETE("/rooms/:id", h.Rooms.Delete)

	// Session lifecycle.  The active listing is deliberately uncached:
	// its durations and costs are recomputed against "now" per request.
	v1.POST("/devices/:id/sessions", h.Sessions.StartDevice)
	v1.POST("/rooms/:id/sessions", h.Sessions.StartRoom)
	v1.GET("/sessions/active", h.Sessions.ListActive)
	v1.POST("/sessions/:id/end", h.Sessions.End)
	v1.GET("/sessions", h.Sessions.History)

	// Reports and export.
	v1.GET("/reports/summary", h.Reports.Summary, cached...)
	v1.GET("/reports/daily", h.Reports.Daily, cached...)
	v1.GET("/reports/devices", h.Reports.Devices, cached...)
	v1.GET("/reports/hourly", h.Reports.Hourly, cached...)
	v1.GET("/reports/export", h.Reports.Export)

	// Subscription plan requests.
	v1.POST("/subscriptions", h.Subscriptions.Submit)
	v1.GET("/subscriptions/pending", h.Subscriptions.Pending)
	v1.POST("/subscriptions/:id/review", h.Subscriptions.Review)
}
