// Package session runs every edit of a tag's layout: auto layout, manual
// moves and duplicates, imports, and the render views that reconcile live
// items against a saved layout.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/generator"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/reconcile"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/settings"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
)

var logger = logging.New("Session")

var (
	// ErrNoItems is returned by AutoLayout when nothing is equipped or carried.
	ErrNoItems = errors.New("no equipped or inventory items")
	// ErrViewNotFound is returned for unknown or expired view ids.
	ErrViewNotFound = errors.New("view not found")
	// ErrInvalidIndex is returned for negative slot indexes.
	ErrInvalidIndex = errors.New("invalid slot index")
)

const noItemsNotice = "This feature uses your equipped items and inventory to automatically create a bank tag layout, but you don't have any items equipped or in your inventory."

// Catalog is every item lookup the manager and its collaborators need.
type Catalog interface {
	generator.Catalog
	reconcile.Catalog
	SubContainerContents(slots []models.SubContainerSlot) []int
	Describe(itemID int) string
}

// Publisher receives layout events, e.g. the WebSocket hub.
type Publisher interface {
	Publish(event models.Event)
}

// Options configures a Manager.
type Options struct {
	// TolerantParsing skips malformed entries in stored and imported layouts
	// instead of rejecting them.
	TolerantParsing bool
	// MaxViews caps concurrent render views. Zero uses DefaultMaxViews.
	MaxViews int
}

// Manager coordinates layout edits against a store.
type Manager struct {
	store      storage.Store
	catalog    Catalog
	generator  *generator.Generator
	reconciler *reconcile.Reconciler
	settings   *settings.Manager
	publisher  Publisher
	tolerant   bool

	// editMu serializes load-modify-save of layouts
	editMu sync.Mutex

	views    map[string]*models.ViewSession
	viewsMu  sync.RWMutex
	maxViews int
}

// NewManager creates a manager. publisher may be nil.
func NewManager(store storage.Store, catalog Catalog, prefs *settings.Manager, publisher Publisher, opts Options) *Manager {
	maxViews := opts.MaxViews
	if maxViews <= 0 {
		maxViews = DefaultMaxViews
	}
	return &Manager{
		store:      store,
		catalog:    catalog,
		generator:  generator.New(catalog),
		reconciler: reconcile.New(catalog),
		settings:   prefs,
		publisher:  publisher,
		tolerant:   opts.TolerantParsing,
		views:      make(map[string]*models.ViewSession),
		maxViews:   maxViews,
	}
}

// Settings returns the settings manager used for auto layouts.
func (m *Manager) Settings() *settings.Manager {
	return m.settings
}

func (m *Manager) publish(event models.Event) {
	if m.publisher == nil {
		return
	}
	event.Timestamp = time.Now().UnixMilli()
	m.publisher.Publish(event)
}

func (m *Manager) parse(serialized string) (*layout.Layout, error) {
	if m.tolerant {
		return layout.ParseTolerant(serialized), nil
	}
	return layout.Parse(serialized)
}

// load returns the stored layout of tag.
func (m *Manager) load(tag string) (*layout.Layout, error) {
	rec, err := m.store.Get(tag)
	if err != nil {
		return nil, err
	}
	l, err := m.parse(rec.Layout)
	if err != nil {
		return nil, fmt.Errorf("stored layout of %q: %w", tag, err)
	}
	return l, nil
}

// loadOrEmpty is load with a missing layout read as empty.
func (m *Manager) loadOrEmpty(tag string) (*layout.Layout, error) {
	l, err := m.load(tag)
	if errors.Is(err, storage.ErrNotFound) {
		return layout.New(), nil
	}
	return l, err
}

func (m *Manager) save(tag string, l *layout.Layout, source models.RevisionSource) (*models.LayoutRecord, error) {
	rec, err := m.store.Save(tag, l, source)
	if err != nil {
		return nil, fmt.Errorf("saving layout of %q: %w", tag, err)
	}
	logger.Debugf("saved %q (%s): %d items, revision %s", tag, source, rec.ItemCount, shortID(rec.RevisionID))
	m.publish(models.Event{Type: models.EventLayoutUpdated, Tag: tag, Record: rec})
	return rec, nil
}

// AutoLayout regenerates the layout of tag from the snapshot and saves it.
// Items of the previous layout that the generated block displaces are moved
// behind it.
func (m *Manager) AutoLayout(tag string, snap models.Snapshot) (*models.LayoutRecord, error) {
	if err := storage.ValidateTag(tag); err != nil {
		return nil, err
	}
	if !snap.HasItems() {
		m.publish(models.Event{Type: models.EventNotice, Tag: tag, Message: noItemsNotice})
		return nil, ErrNoItems
	}

	prefs := m.settings.Get()
	var subContainer []int
	if prefs.IncludeSubContainer {
		subContainer = m.catalog.SubContainerContents(snap.SubContainer)
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()

	current, err := m.loadOrEmpty(tag)
	if err != nil {
		return nil, err
	}

	preview := m.generator.Generate(generator.Input{
		Equipped:       snap.Equipped,
		Inventory:      snap.Inventory,
		SubContainer:   subContainer,
		Extra:          snap.Extra,
		Current:        current,
		DuplicateLimit: prefs.EffectiveDuplicateLimit(),
	})

	logger.Infof("auto layout %q: %d items (was %d)", tag, preview.Len(), current.Len())
	return m.save(tag, preview, models.SourceAuto)
}

// MoveItem swaps two slots of a saved layout. draggedItemID is the id shown on
// the dragged slot, or -1 to use the stored one.
func (m *Manager) MoveItem(tag string, draggedIndex, targetIndex, draggedItemID int) (*models.LayoutRecord, error) {
	if draggedIndex < 0 || targetIndex < 0 {
		return nil, ErrInvalidIndex
	}
	if draggedItemID <= 0 {
		draggedItemID = -1
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()

	l, err := m.load(tag)
	if err != nil {
		return nil, err
	}
	if err := l.MoveItem(draggedIndex, targetIndex, draggedItemID); err != nil {
		return nil, err
	}
	return m.save(tag, l, models.SourceMove)
}

// DuplicateItem copies the item at index into the next free slot after it and
// returns that slot with the saved record.
func (m *Manager) DuplicateItem(tag string, index, liveItemID int) (int, *models.LayoutRecord, error) {
	if index < 0 {
		return -1, nil, ErrInvalidIndex
	}
	if liveItemID <= 0 {
		liveItemID = -1
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()

	l, err := m.load(tag)
	if err != nil {
		return -1, nil, err
	}
	if liveItemID == -1 && l.ItemAt(index) == -1 {
		return -1, nil, fmt.Errorf("duplicating index %d: %w", index, layout.ErrEmptySlot)
	}

	dup := l.DuplicateItem(index, liveItemID)
	rec, err := m.save(tag, l, models.SourceDuplicate)
	if err != nil {
		return -1, nil, err
	}
	return dup, rec, nil
}

// ClearIndex empties one slot.
func (m *Manager) ClearIndex(tag string, index int) (*models.LayoutRecord, error) {
	if index < 0 {
		return nil, ErrInvalidIndex
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()

	l, err := m.load(tag)
	if err != nil {
		return nil, err
	}
	l.ClearIndex(index)
	return m.save(tag, l, models.SourceClear)
}

// ImportLayout replaces the layout of tag with a serialized one.
func (m *Manager) ImportLayout(tag, serialized string) (*models.LayoutRecord, error) {
	if err := storage.ValidateTag(tag); err != nil {
		return nil, err
	}
	l, err := m.parse(serialized)
	if err != nil {
		return nil, err
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()
	return m.save(tag, l, models.SourceImport)
}

// GetLayout returns the stored record of tag with its occupied slots.
func (m *Manager) GetLayout(tag string) (*models.LayoutView, error) {
	rec, err := m.store.Get(tag)
	if err != nil {
		return nil, err
	}
	l, err := m.parse(rec.Layout)
	if err != nil {
		return nil, fmt.Errorf("stored layout of %q: %w", tag, err)
	}

	pairs := l.Pairs()
	view := &models.LayoutView{
		LayoutRecord: *rec,
		Pairs:        make([]models.SlotPair, 0, len(pairs)),
	}
	for _, p := range pairs {
		view.Pairs = append(view.Pairs, models.SlotPair{Index: p.Index, ItemID: p.ItemID})
	}
	return view, nil
}

// ListLayouts returns the most recently updated layouts.
func (m *Manager) ListLayouts(limit int) ([]*models.LayoutRecord, error) {
	return m.store.List(limit)
}

// History returns the saved revisions of tag, newest first.
func (m *Manager) History(tag string, limit int) ([]*models.LayoutRevision, error) {
	return m.store.History(tag, limit)
}

// DeleteLayout removes a layout and closes the views showing it.
func (m *Manager) DeleteLayout(tag string) error {
	m.editMu.Lock()
	err := m.store.Delete(tag)
	m.editMu.Unlock()
	if err != nil {
		return err
	}

	closed := m.closeViewsOf(tag)
	logger.Infof("deleted layout %q (closed %d views)", tag, closed)
	m.publish(models.Event{Type: models.EventLayoutDeleted, Tag: tag})
	return nil
}
