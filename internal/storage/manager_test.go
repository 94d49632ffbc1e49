// manager_test.go - Tests for the file backed layout store
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
)

func createTestStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func mustParse(t *testing.T, s string) *layout.Layout {
	l, err := layout.Parse(s)
	if err != nil {
		t.Fatalf("Failed to parse layout %q: %v", s, err)
	}
	return l
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates layout directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "layouts")

		if _, err := NewLocalStore(dir, 0); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Error("Expected layout directory to be created")
		}
	})

	t.Run("loads existing layouts", func(t *testing.T) {
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, "melee.layout"), []byte("4151:0,1712:8\n"), 0644)
		os.WriteFile(filepath.Join(dir, "Bad Tag.layout"), []byte("1:0"), 0644)
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

		store, err := NewLocalStore(dir, 0)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		rec, err := store.Get("melee")
		if err != nil {
			t.Fatalf("Expected melee layout to be loaded: %v", err)
		}
		if rec.Layout != "4151:0,1712:8" {
			t.Errorf("Expected trimmed layout, got %q", rec.Layout)
		}
		if rec.ItemCount != 2 {
			t.Errorf("Expected 2 items, got %d", rec.ItemCount)
		}

		list, _ := store.List(0)
		if len(list) != 1 {
			t.Errorf("Expected only the valid layout to be loaded, got %d", len(list))
		}
	})
}

func TestLocalStore_SaveAndGet(t *testing.T) {
	store := createTestStore(t)

	rec, err := store.Save("slayer", mustParse(t, "10:0,20:5"), models.SourceAuto)
	if err != nil {
		t.Fatalf("Failed to save layout: %v", err)
	}
	if rec.RevisionID == "" {
		t.Error("Expected revision ID to be set")
	}
	if rec.ItemCount != 2 {
		t.Errorf("Expected 2 items, got %d", rec.ItemCount)
	}

	data, err := os.ReadFile(filepath.Join(store.layoutDir, "slayer.layout"))
	if err != nil {
		t.Fatalf("Expected layout file on disk: %v", err)
	}
	if string(data) != "10:0,20:5" {
		t.Errorf("Expected serialized layout on disk, got %q", data)
	}

	got, err := store.Get("slayer")
	if err != nil {
		t.Fatalf("Failed to get layout: %v", err)
	}
	if got.Layout != "10:0,20:5" || got.RevisionID != rec.RevisionID {
		t.Errorf("Unexpected record: %+v", got)
	}
}

func TestLocalStore_Errors(t *testing.T) {
	store := createTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.History("missing", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.Save("../escape", layout.New(), models.SourceImport); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("Expected ErrInvalidTag, got %v", err)
	}
}

func TestLocalStore_History(t *testing.T) {
	store := createTestStore(t)

	for _, s := range []string{"1:0", "2:0", "3:0", "4:0"} {
		if _, err := store.Save("pvm", mustParse(t, s), models.SourceMove); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	}

	revs, err := store.History("pvm", 0)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("Expected history capped at 3, got %d", len(revs))
	}
	if revs[0].Layout != "4:0" || revs[2].Layout != "2:0" {
		t.Errorf("Expected newest first, got %q .. %q", revs[0].Layout, revs[2].Layout)
	}

	revs, _ = store.History("pvm", 1)
	if len(revs) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(revs))
	}
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	store := createTestStore(t)

	store.Save("a", mustParse(t, "1:0"), models.SourceImport)
	store.Save("b", mustParse(t, "2:0"), models.SourceImport)

	list, err := store.List(10)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 layouts, got %d", len(list))
	}

	list, _ = store.List(1)
	if len(list) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(list))
	}

	if err := store.Delete("a"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.layoutDir, "a.layout")); !os.IsNotExist(err) {
		t.Error("Expected layout file to be removed")
	}
	if _, err := store.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deleted layout to be gone, got %v", err)
	}
}

func TestValidateTag(t *testing.T) {
	valid := []string{"melee", "slayer task", "gear_set-2"}
	for _, tag := range valid {
		if err := ValidateTag(tag); err != nil {
			t.Errorf("Expected %q to be valid: %v", tag, err)
		}
	}

	invalid := []string{"", " padded", "Upper", "a/b", "..", string(make([]byte, 65))}
	for _, tag := range invalid {
		if err := ValidateTag(tag); !errors.Is(err, ErrInvalidTag) {
			t.Errorf("Expected %q to be rejected, got %v", tag, err)
		}
	}
}
