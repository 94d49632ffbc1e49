// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
)

// MockStorage implements storage.Store in memory for testing
type MockStorage struct {
	records map[string]*models.LayoutRecord
	history map[string][]*models.LayoutRevision // newest first
	saves   int
	mu      sync.RWMutex

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

// NewMockStorage creates an empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		records: make(map[string]*models.LayoutRecord),
		history: make(map[string][]*models.LayoutRevision),
	}
}

func (m *MockStorage) Get(tag string) (*models.LayoutRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, tag)
	}
	copied := *rec
	return &copied, nil
}

func (m *MockStorage) Save(tag string, l *layout.Layout, source models.RevisionSource) (*models.LayoutRecord, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	if err := storage.ValidateTag(tag); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rev := &models.LayoutRevision{
		ID:        uuid.New().String(),
		Tag:       tag,
		Layout:    l.String(),
		Source:    source,
		CreatedAt: now,
	}
	m.history[tag] = append([]*models.LayoutRevision{rev}, m.history[tag]...)

	rec := &models.LayoutRecord{
		Tag:        tag,
		Layout:     rev.Layout,
		RevisionID: rev.ID,
		ItemCount:  l.Len(),
		UpdatedAt:  now,
	}
	m.records[tag] = rec
	m.saves++

	copied := *rec
	return &copied, nil
}

func (m *MockStorage) List(limit int) ([]*models.LayoutRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.LayoutRecord, 0, len(m.records))
	for _, rec := range m.records {
		copied := *rec
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Tag < list[j].Tag })

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[tag]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, tag)
	}
	delete(m.records, tag)
	delete(m.history, tag)
	return nil
}

func (m *MockStorage) History(tag string, limit int) ([]*models.LayoutRevision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	revs, ok := m.history[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, tag)
	}
	if limit > 0 && len(revs) > limit {
		revs = revs[:limit]
	}
	out := make([]*models.LayoutRevision, len(revs))
	copy(out, revs)
	return out, nil
}

func (m *MockStorage) Close() error {
	return nil
}

// AddLayout stores a serialized layout directly, without counting as a save.
// It panics on a malformed layout string.
func (m *MockStorage) AddLayout(tag, serialized string) *models.LayoutRecord {
	l, err := layout.Parse(serialized)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad layout %q: %v", serialized, err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := &models.LayoutRecord{
		Tag:        tag,
		Layout:     l.String(),
		RevisionID: uuid.New().String(),
		ItemCount:  l.Len(),
		UpdatedAt:  time.Now(),
	}
	m.records[tag] = rec
	m.history[tag] = []*models.LayoutRevision{{
		ID:        rec.RevisionID,
		Tag:       tag,
		Layout:    rec.Layout,
		Source:    models.SourceImport,
		CreatedAt: rec.UpdatedAt,
	}}
	return rec
}

// LayoutString returns the stored layout of tag, or "" if there is none.
func (m *MockStorage) LayoutString(tag string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rec, ok := m.records[tag]; ok {
		return rec.Layout
	}
	return ""
}

// SaveCount returns how many times Save succeeded.
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Clear removes all stored layouts
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*models.LayoutRecord)
	m.history = make(map[string][]*models.LayoutRevision)
	m.saves = 0
}
