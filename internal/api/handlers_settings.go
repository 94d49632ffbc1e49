// handlers_settings.go - Auto layout settings handlers
package api

import (
	"net/http"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/labstack/echo/v4"
)

// SettingsHandlerImpl implements the SettingsHandler interface
type SettingsHandlerImpl struct {
	settings SettingsService
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(settings SettingsService) SettingsHandler {
	return &SettingsHandlerImpl{settings: settings}
}

// HandleGetSettings returns the current auto layout settings
func (h *SettingsHandlerImpl) HandleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, settingsResponse{
		LayoutSettings: h.settings.Get(),
		Persistent:     h.settings.Persistent(),
	})
}

// HandleUpdateSettings replaces the auto layout settings. Omitted fields keep
// their current value.
func (h *SettingsHandlerImpl) HandleUpdateSettings(c echo.Context) error {
	// Bind onto the current values so partial bodies work
	req := h.settings.Get()
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if err := h.settings.Update(req); err != nil {
		return mapError(err, "settings", "layout")
	}

	return c.JSON(http.StatusOK, settingsResponse{
		LayoutSettings: h.settings.Get(),
		Persistent:     h.settings.Persistent(),
	})
}

type settingsResponse struct {
	models.LayoutSettings
	Persistent bool `json:"persistent"`
}
