package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/api"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/catalog"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/config"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/session"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/settings"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/quasilyte/gdata/v2"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var logger = logging.New("Server")

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "ZigzagLayout.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	level := logging.SetLevel(cfg.Advanced.LogLevel)

	// Item catalog
	var cat *catalog.Catalog
	if cfg.Layout.CatalogFile != "" {
		cat, err = catalog.Load(cfg.Layout.CatalogFile)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		fmt.Printf("Failed to load item catalog: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Per-user settings survive restarts when a data directory is available
	var gdataStore *gdata.Manager
	if gd, err := settings.Open(cfg.Advanced.SettingsAppName); err != nil {
		logger.Warnf("settings will not be persisted: %v", err)
	} else {
		gdataStore = gd
	}
	prefs := settings.NewManager(gdataStore, models.LayoutSettings{
		DuplicatesEnabled:   cfg.Layout.DuplicatesEnabled,
		DuplicateLimit:      cfg.Layout.DuplicateLimit,
		IncludeSubContainer: cfg.Layout.IncludeSubContainer,
	})

	hub := api.NewHub()
	sessionMgr := session.NewManager(store, cat, prefs, hub, session.Options{
		TolerantParsing: cfg.Layout.TolerantParsing,
		MaxViews:        cfg.Sessions.MaxViews,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background view cleanup
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessionMgr.CleanupOldViews(cfg.ViewTimeout()); n > 0 {
					logger.Infof("closed %d idle views", n)
				}
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetHeader(logging.Header)
	e.Logger.SetLevel(level)

	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
	})

	handlers := api.NewHandlers(&api.Dependencies{
		Layouts:  sessionMgr,
		Settings: prefs,
		Hub:      hub,
		Backend:  cfg.Storage.Backend,
		Version:  Version,
	})
	api.RegisterRoutes(e, handlers)
	api.RegisterWebSocketRoutes(e, handlers)

	// Register embedded viewer if available
	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warnf("failed to register static routes: %v", err)
			embeddedMode = false
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Zigzag Layout Server                            ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Storage:    %-45s║\n", cfg.Storage.Backend)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	if err := store.Close(); err != nil {
		logger.Errorf("closing storage: %v", err)
	}
}

// openStore opens the configured layout backend
func openStore(cfg *config.AppConfig) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendDuckDB:
		return storage.NewDuckStore(cfg.Storage.DatabaseFile, storage.DuckOptions{
			Threads:      cfg.Advanced.DuckDBThreads,
			MemoryLimit:  cfg.Advanced.DuckDBMemoryLimit,
			HistoryLimit: cfg.Storage.HistoryLimit,
		})
	default:
		return storage.NewLocalStore(cfg.Storage.LayoutsDirectory, cfg.Storage.HistoryLimit)
	}
}
