// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/labstack/echo/v4"
)

// LayoutHandler handles stored layouts and their edits
type LayoutHandler interface {
	HandleListLayouts(c echo.Context) error
	HandleGetLayout(c echo.Context) error
	HandleGetLayoutMsgpack(c echo.Context) error
	HandleGetHistory(c echo.Context) error
	HandleImportLayout(c echo.Context) error
	HandleDeleteLayout(c echo.Context) error
	HandleAutoLayout(c echo.Context) error
	HandleMoveItem(c echo.Context) error
	HandleDuplicateItem(c echo.Context) error
	HandleClearIndex(c echo.Context) error
}

// ViewHandler handles render views
type ViewHandler interface {
	HandleStartView(c echo.Context) error
	HandleGetView(c echo.Context) error
	HandleReconcile(c echo.Context) error
	HandleViewKeepAlive(c echo.Context) error
}

// SettingsHandler handles the auto layout settings
type SettingsHandler interface {
	HandleGetSettings(c echo.Context) error
	HandleUpdateSettings(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// EventHandler serves the WebSocket event stream
type EventHandler interface {
	HandleWebSocket(c echo.Context) error
}

// LayoutService defines the layout operations the handlers need.
// This allows mocking in tests
type LayoutService interface {
	AutoLayout(tag string, snap models.Snapshot) (*models.LayoutRecord, error)
	MoveItem(tag string, draggedIndex, targetIndex, draggedItemID int) (*models.LayoutRecord, error)
	DuplicateItem(tag string, index, liveItemID int) (int, *models.LayoutRecord, error)
	ClearIndex(tag string, index int) (*models.LayoutRecord, error)
	ImportLayout(tag, serialized string) (*models.LayoutRecord, error)
	GetLayout(tag string) (*models.LayoutView, error)
	ListLayouts(limit int) ([]*models.LayoutRecord, error)
	History(tag string, limit int) ([]*models.LayoutRevision, error)
	DeleteLayout(tag string) error

	StartView(tag string) (*models.ViewSession, error)
	Reconcile(viewID string, instances []models.ItemInstance) (*models.ViewSession, error)
	GetView(id string) (*models.ViewSession, bool)
	TouchView(id string) bool
	ViewCount() int
}

// SettingsService defines the settings operations the handlers need
type SettingsService interface {
	Get() models.LayoutSettings
	Update(s models.LayoutSettings) error
	Persistent() bool
}
