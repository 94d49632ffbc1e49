// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	backend string
	layouts LayoutService
	hub     *Hub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, backend string, layouts LayoutService, hub *Hub) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		backend: backend,
		layouts: layouts,
		hub:     hub,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"storage": h.backend,
	}
	if h.layouts != nil {
		resp["views"] = h.layouts.ViewCount()
	}
	if h.hub != nil {
		resp["clients"] = h.hub.ClientCount()
	}
	return c.JSON(http.StatusOK, resp)
}
