package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
)

// DefaultMaxViews limits concurrent render views to bound memory
const DefaultMaxViews = 64

// ViewKeepAliveWindow is how long a recently used view survives cleanup
const ViewKeepAliveWindow = 5 * time.Minute

// shortID safely truncates an ID for logging (handles short IDs gracefully)
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// StartView opens a render view of tag. The tag does not need a saved layout
// yet; the first reconcile creates one.
func (m *Manager) StartView(tag string) (*models.ViewSession, error) {
	if err := storage.ValidateTag(tag); err != nil {
		return nil, err
	}

	m.cleanupOldViewsIfNeeded()

	view := models.NewViewSession(uuid.New().String(), tag)
	if rec, err := m.store.Get(tag); err == nil {
		view.Layout = rec.Layout
	}

	m.viewsMu.Lock()
	m.views[view.ID] = view
	m.viewsMu.Unlock()

	logger.Debugf("started view %s of %q", shortID(view.ID), tag)
	copied := *view
	return &copied, nil
}

// Reconcile matches live instances against the view's layout. Instances with
// no slot are added to the layout, which is then saved.
func (m *Manager) Reconcile(viewID string, instances []models.ItemInstance) (*models.ViewSession, error) {
	m.viewsMu.RLock()
	view, ok := m.views[viewID]
	m.viewsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	tag := view.Tag

	m.editMu.Lock()
	l, err := m.loadOrEmpty(tag)
	if err != nil {
		m.editMu.Unlock()
		return nil, err
	}

	before := l.Len()
	assigned := m.reconciler.AssignItemPositions(l, instances)
	fakes := m.reconciler.CalculateFakeItems(l, assigned)
	inserted := l.Len() - before

	if inserted > 0 {
		if _, err := m.save(tag, l, models.SourceReconcile); err != nil {
			m.editMu.Unlock()
			return nil, err
		}
		logger.Infof("view %s added %d items to %q", shortID(viewID), inserted, tag)
	}
	m.editMu.Unlock()

	assignments := make([]models.Assignment, 0, len(assigned))
	for index, inst := range assigned {
		assignments = append(assignments, models.Assignment{Index: index, Item: inst})
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].Index < assignments[j].Index })

	m.viewsMu.Lock()
	defer m.viewsMu.Unlock()

	view, ok = m.views[viewID]
	if !ok {
		// closed while reconciling
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	view.Layout = l.String()
	view.Assignments = assignments
	view.FakeItems = fakes
	view.Inserted = inserted
	view.LastAccessed = time.Now()

	copied := *view
	return &copied, nil
}

// GetView returns a view by ID.
func (m *Manager) GetView(id string) (*models.ViewSession, bool) {
	m.viewsMu.RLock()
	defer m.viewsMu.RUnlock()

	view, ok := m.views[id]
	if !ok {
		return nil, false
	}
	copied := *view
	return &copied, true
}

// TouchView updates the LastAccessed timestamp of a view so cleanup keeps it.
func (m *Manager) TouchView(id string) bool {
	m.viewsMu.Lock()
	defer m.viewsMu.Unlock()

	view, ok := m.views[id]
	if !ok {
		return false
	}
	view.LastAccessed = time.Now()
	return true
}

// ViewCount returns the number of open views.
func (m *Manager) ViewCount() int {
	m.viewsMu.RLock()
	defer m.viewsMu.RUnlock()
	return len(m.views)
}

// cleanupOldViewsIfNeeded evicts the least recently used views at capacity
func (m *Manager) cleanupOldViewsIfNeeded() {
	m.viewsMu.Lock()
	defer m.viewsMu.Unlock()

	if len(m.views) < m.maxViews {
		return
	}

	ids := make([]string, 0, len(m.views))
	for id := range m.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.views[ids[i]].LastAccessed.Before(m.views[ids[j]].LastAccessed)
	})

	toFree := len(m.views) - m.maxViews + 1
	for _, id := range ids[:toFree] {
		delete(m.views, id)
		logger.Debugf("evicted view %s to stay under %d views", shortID(id), m.maxViews)
	}
}

// CleanupOldViews removes views idle for longer than maxAge, but keeps views
// accessed within ViewKeepAliveWindow. It returns how many were removed.
func (m *Manager) CleanupOldViews(maxAge time.Duration) int {
	m.viewsMu.Lock()
	defer m.viewsMu.Unlock()

	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-ViewKeepAliveWindow)

	removed := 0
	for id, view := range m.views {
		if view.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if view.LastAccessed.Before(cutoff) {
			delete(m.views, id)
			removed++
			logger.Debugf("cleaned up view %s (last accessed %s ago)",
				shortID(id), now.Sub(view.LastAccessed).Round(time.Second))
		}
	}
	return removed
}

// closeViewsOf drops every view of tag.
func (m *Manager) closeViewsOf(tag string) int {
	m.viewsMu.Lock()
	defer m.viewsMu.Unlock()

	closed := 0
	for id, view := range m.views {
		if view.Tag == tag {
			delete(m.views, id)
			closed++
		}
	}
	return closed
}
