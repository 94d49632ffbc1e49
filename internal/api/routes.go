// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var logger = logging.New("API")

// Dependencies holds all handler dependencies
type Dependencies struct {
	Layouts  LayoutService
	Settings SettingsService
	Hub      *Hub
	Backend  string
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Layout   LayoutHandler
	View     ViewHandler
	Settings SettingsHandler
	Events   EventHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	handlers := &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Backend, deps.Layouts, deps.Hub),
		Layout:   NewLayoutHandler(deps.Layouts),
		View:     NewViewHandler(deps.Layouts),
		Settings: NewSettingsHandler(deps.Settings),
	}
	if deps.Hub != nil {
		handlers.Events = deps.Hub
	}
	return handlers
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Layout routes
	layoutGroup := apiGroup.Group("/layouts")
	layoutGroup.GET("", handlers.Layout.HandleListLayouts)
	layoutGroup.GET("/:tag", handlers.Layout.HandleGetLayout)
	layoutGroup.PUT("/:tag", handlers.Layout.HandleImportLayout)
	layoutGroup.DELETE("/:tag", handlers.Layout.HandleDeleteLayout)
	layoutGroup.GET("/:tag/msgpack", handlers.Layout.HandleGetLayoutMsgpack)
	layoutGroup.GET("/:tag/history", handlers.Layout.HandleGetHistory)
	layoutGroup.POST("/:tag/auto", handlers.Layout.HandleAutoLayout)
	layoutGroup.POST("/:tag/move", handlers.Layout.HandleMoveItem)
	layoutGroup.POST("/:tag/duplicate", handlers.Layout.HandleDuplicateItem)
	layoutGroup.POST("/:tag/clear", handlers.Layout.HandleClearIndex)

	// Render view routes
	viewGroup := apiGroup.Group("/views")
	viewGroup.POST("", handlers.View.HandleStartView)
	viewGroup.GET("/:id", handlers.View.HandleGetView)
	viewGroup.POST("/:id/reconcile", handlers.View.HandleReconcile)
	viewGroup.POST("/:id/keepalive", handlers.View.HandleViewKeepAlive)

	// Settings routes
	apiGroup.GET("/settings", handlers.Settings.HandleGetSettings)
	apiGroup.PUT("/settings", handlers.Settings.HandleUpdateSettings)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	if handlers.Events == nil {
		return
	}
	e.GET("/api/ws", handlers.Events.HandleWebSocket)
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	RequestLogging bool
	EnableCORS     bool
	AllowOrigins   string // comma separated
	BodyLimit      string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") ||
				path == "/api/health" ||
				path == "/api/ws"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		origins := strings.Split(cfg.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
