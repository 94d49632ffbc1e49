// Package settings persists the auto layout options between restarts using
// the platform's per-user data directory.
package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	settingsObject   = "settings"
	settingsProperty = "layout"
)

var logger = logging.New("Settings")

// ErrInvalidSettings is returned by Update for out of range values.
var ErrInvalidSettings = errors.New("invalid settings")

// Open creates the gdata storage for appName. A nil manager with the error is
// returned when the platform has no usable data directory.
func Open(appName string) (*gdata.Manager, error) {
	return gdata.Open(gdata.Config{AppName: appName})
}

// Manager holds the current settings. A nil gdata manager keeps settings in
// memory only.
type Manager struct {
	mu       sync.RWMutex
	store    *gdata.Manager
	defaults models.LayoutSettings
	current  models.LayoutSettings
}

// NewManager loads saved settings, falling back to defaults.
func NewManager(store *gdata.Manager, defaults models.LayoutSettings) *Manager {
	m := &Manager{
		store:    store,
		defaults: defaults,
		current:  defaults,
	}
	if err := m.Load(); err != nil {
		logger.Warnf("failed to load settings: %v (using defaults)", err)
	}
	return m
}

// Persistent reports whether settings survive a restart.
func (m *Manager) Persistent() bool {
	return m.store != nil
}

// Load reads the saved settings. Missing settings leave the defaults in place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = m.defaults
	if m.store == nil {
		return nil
	}
	if !m.store.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := m.store.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := m.defaults
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := validate(loaded); err != nil {
		return err
	}

	m.current = loaded
	logger.Infof("settings loaded")
	return nil
}

// Get returns the current settings.
func (m *Manager) Get() models.LayoutSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update validates and stores s.
func (m *Manager) Update(s models.LayoutSettings) error {
	if err := validate(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		data, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		if err := m.store.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}

	m.current = s
	logger.Infof("settings updated: duplicates=%t limit=%d subContainer=%t",
		s.DuplicatesEnabled, s.DuplicateLimit, s.IncludeSubContainer)
	return nil
}

func validate(s models.LayoutSettings) error {
	if s.DuplicateLimit < 0 {
		return fmt.Errorf("%w: duplicate limit must not be negative", ErrInvalidSettings)
	}
	if s.DuplicatesEnabled && s.DuplicateLimit == 0 {
		return fmt.Errorf("%w: duplicate limit must be positive when duplicates are enabled", ErrInvalidSettings)
	}
	return nil
}
