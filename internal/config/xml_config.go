// Package config provides XML-based configuration for the layout service.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Storage backends.
const (
	BackendLocal  = "local"
	BackendDuckDB = "duckdb"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"ZigzagLayout"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Layout generation defaults
	Layout LayoutConfig `xml:"Layout"`

	// Render view sessions
	Sessions SessionsConfig `xml:"Sessions"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains layout persistence settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	LayoutsDirectory string `xml:"LayoutsDirectory"`
	Backend          string `xml:"Backend"` // "local" or "duckdb"
	DatabaseFile     string `xml:"DatabaseFile"`
	HistoryLimit     int    `xml:"HistoryLimit"`
}

// LayoutConfig contains the defaults applied to new users and imports
type LayoutConfig struct {
	DuplicatesEnabled   bool   `xml:"DuplicatesEnabled"`
	DuplicateLimit      int    `xml:"DuplicateLimit"`
	IncludeSubContainer bool   `xml:"IncludeSubContainer"`
	TolerantParsing     bool   `xml:"TolerantParsing"`
	CatalogFile         string `xml:"CatalogFile"` // empty uses the built-in catalog
}

// SessionsConfig contains render view lifetime settings
type SessionsConfig struct {
	ViewTimeoutMinutes     int `xml:"ViewTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
	MaxViews               int `xml:"MaxViews"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
	SettingsAppName      string `xml:"SettingsAppName"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "1M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			LayoutsDirectory: "./data/layouts",
			Backend:          BackendLocal,
			DatabaseFile:     "./data/layouts.duckdb",
			HistoryLimit:     20,
		},
		Layout: LayoutConfig{
			DuplicatesEnabled:   true,
			DuplicateLimit:      4,
			IncludeSubContainer: true,
			TolerantParsing:     true,
		},
		Sessions: SessionsConfig{
			ViewTimeoutMinutes:     30,
			CleanupIntervalMinutes: 5,
			MaxViews:               64,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "256MB",
			SettingsAppName:      "zigzag_layout",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	var config *AppConfig

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// If file doesn't exist, create default
		config = DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config = &AppConfig{}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Zigzag Layout Service Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values the service cannot run with
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendLocal, BackendDuckDB:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Layout.DuplicateLimit < 0 {
		return fmt.Errorf("duplicate limit must not be negative, got %d", c.Layout.DuplicateLimit)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.LayoutsDirectory = filepath.Join(dataDir, "layouts")
		c.Storage.DatabaseFile = filepath.Join(dataDir, "layouts.duckdb")
	}

	if catalog := os.Getenv("LAYOUT_CATALOG"); catalog != "" {
		c.Layout.CatalogFile = catalog
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(path *string) {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(configDir, *path)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.LayoutsDirectory)
	resolve(&c.Storage.DatabaseFile)
	resolve(&c.Layout.CatalogFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ViewTimeout returns how long an idle render view is kept
func (c *AppConfig) ViewTimeout() time.Duration {
	return time.Duration(c.Sessions.ViewTimeoutMinutes) * time.Minute
}

// CleanupInterval returns how often idle views are swept
func (c *AppConfig) CleanupInterval() time.Duration {
	minutes := c.Sessions.CleanupIntervalMinutes
	if minutes <= 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.LayoutsDirectory,
		filepath.Dir(c.Storage.DatabaseFile),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
