package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
)

const layoutExt = ".layout"

var logger = logging.New("Storage")

var (
	// ErrNotFound is returned when a tag has no stored layout.
	ErrNotFound = errors.New("layout not found")
	// ErrInvalidTag is returned for tag names that cannot be stored.
	ErrInvalidTag = errors.New("invalid tag name")
)

// Store defines the interface for layout storage.
type Store interface {
	Get(tag string) (*models.LayoutRecord, error)
	Save(tag string, l *layout.Layout, source models.RevisionSource) (*models.LayoutRecord, error)
	List(limit int) ([]*models.LayoutRecord, error)
	Delete(tag string) error
	History(tag string, limit int) ([]*models.LayoutRevision, error)
	Close() error
}

// ValidateTag checks that tag is usable as a file name and database key:
// 1 to 64 characters of lowercase letters, digits, space, '-' or '_'.
func ValidateTag(tag string) error {
	if tag == "" || len(tag) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if strings.TrimSpace(tag) != tag {
		return fmt.Errorf("%w: %q has surrounding spaces", ErrInvalidTag, tag)
	}
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidTag, tag, r)
		}
	}
	return nil
}

// LocalStore implements Store with one file per tag holding the serialized
// layout. Revision history is kept in memory only.
type LocalStore struct {
	mu           sync.RWMutex
	layoutDir    string
	historyLimit int
	records      map[string]*models.LayoutRecord
	history      map[string][]*models.LayoutRevision // newest first
}

// NewLocalStore creates a LocalStore and loads the layouts already in layoutDir.
func NewLocalStore(layoutDir string, historyLimit int) (*LocalStore, error) {
	if err := os.MkdirAll(layoutDir, 0755); err != nil {
		return nil, fmt.Errorf("creating layout directory: %w", err)
	}

	s := &LocalStore{
		layoutDir:    layoutDir,
		historyLimit: historyLimit,
		records:      make(map[string]*models.LayoutRecord),
		history:      make(map[string][]*models.LayoutRevision),
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

// scan indexes the layout files on disk.
func (s *LocalStore) scan() error {
	entries, err := os.ReadDir(s.layoutDir)
	if err != nil {
		return fmt.Errorf("reading layout directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, layoutExt) {
			continue
		}
		tag := strings.TrimSuffix(name, layoutExt)
		if ValidateTag(tag) != nil {
			logger.Warnf("ignoring layout file with invalid tag name: %s", name)
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.layoutDir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}

		serialized := strings.TrimSpace(string(data))
		s.records[tag] = &models.LayoutRecord{
			Tag:        tag,
			Layout:     serialized,
			RevisionID: uuid.New().String(),
			ItemCount:  layout.ParseTolerant(serialized).Len(),
			UpdatedAt:  info.ModTime(),
		}
	}

	logger.Infof("loaded %d layouts from %s", len(s.records), s.layoutDir)
	return nil
}

func (s *LocalStore) path(tag string) string {
	return filepath.Join(s.layoutDir, tag+layoutExt)
}

// Get retrieves the layout of a tag.
func (s *LocalStore) Get(tag string) (*models.LayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tag)
	}

	copied := *rec
	return &copied, nil
}

// Save writes the layout of a tag and records a revision.
func (s *LocalStore) Save(tag string, l *layout.Layout, source models.RevisionSource) (*models.LayoutRecord, error) {
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}

	serialized := l.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	// replaced via rename
	tmp := s.path(tag) + ".tmp"
	if err := os.WriteFile(tmp, []byte(serialized), 0644); err != nil {
		return nil, fmt.Errorf("writing layout: %w", err)
	}
	if err := os.Rename(tmp, s.path(tag)); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("replacing layout: %w", err)
	}

	rev := &models.LayoutRevision{
		ID:        uuid.New().String(),
		Tag:       tag,
		Layout:    serialized,
		Source:    source,
		CreatedAt: time.Now(),
	}
	s.addRevision(rev)

	rec := &models.LayoutRecord{
		Tag:        tag,
		Layout:     serialized,
		RevisionID: rev.ID,
		ItemCount:  l.Len(),
		UpdatedAt:  rev.CreatedAt,
	}
	s.records[tag] = rec

	copied := *rec
	return &copied, nil
}

func (s *LocalStore) addRevision(rev *models.LayoutRevision) {
	revs := append([]*models.LayoutRevision{rev}, s.history[rev.Tag]...)
	if s.historyLimit > 0 && len(revs) > s.historyLimit {
		revs = revs[:s.historyLimit]
	}
	s.history[rev.Tag] = revs
}

// List returns the most recently updated layouts.
func (s *LocalStore) List(limit int) ([]*models.LayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.LayoutRecord, 0, len(s.records))
	for _, rec := range s.records {
		copied := *rec
		list = append(list, &copied)
	}

	// Sort by UpdatedAt desc, tag asc on ties
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].Tag < list[j].Tag
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes the layout of a tag and its history.
func (s *LocalStore) Delete(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[tag]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, tag)
	}

	if err := os.Remove(s.path(tag)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting layout: %w", err)
	}

	delete(s.records, tag)
	delete(s.history, tag)
	return nil
}

// History returns the revisions saved since startup, newest first.
func (s *LocalStore) History(tag string, limit int) ([]*models.LayoutRevision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[tag]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tag)
	}

	revs := s.history[tag]
	if limit > 0 && len(revs) > limit {
		revs = revs[:limit]
	}
	out := make([]*models.LayoutRevision, len(revs))
	copy(out, revs)
	return out, nil
}

// Close is a no-op; every save is already on disk.
func (s *LocalStore) Close() error {
	return nil
}
