// duckstore_test.go - Tests for the DuckDB backed layout store
package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
)

func createTestDuckStore(t *testing.T, path string) *DuckStore {
	store, err := NewDuckStore(path, DuckOptions{Threads: 1, MemoryLimit: "128MB", HistoryLimit: 2})
	if err != nil {
		t.Fatalf("Failed to create DuckStore: %v", err)
	}
	return store
}

func TestDuckStore_SaveGetHistory(t *testing.T) {
	store := createTestDuckStore(t, filepath.Join(t.TempDir(), "layouts.duckdb"))
	defer store.Close()

	for _, s := range []string{"1:0", "1:0,2:1", "1:0,2:1,3:2"} {
		if _, err := store.Save("barrows", mustParse(t, s), models.SourceAuto); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	}

	rec, err := store.Get("barrows")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if rec.Layout != "1:0,2:1,3:2" || rec.ItemCount != 3 {
		t.Errorf("Expected newest revision, got %+v", rec)
	}

	revs, err := store.History("barrows", 0)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("Expected history pruned to 2, got %d", len(revs))
	}
	if revs[0].ID != rec.RevisionID || revs[0].Source != models.SourceAuto {
		t.Errorf("Unexpected newest revision: %+v", revs[0])
	}
}

func TestDuckStore_ListDelete(t *testing.T) {
	store := createTestDuckStore(t, filepath.Join(t.TempDir(), "layouts.duckdb"))
	defer store.Close()

	store.Save("first", mustParse(t, "1:0"), models.SourceImport)
	store.Save("second", mustParse(t, "2:0"), models.SourceImport)
	store.Save("first", mustParse(t, "1:0,3:1"), models.SourceMove)

	list, err := store.List(0)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected one record per tag, got %d", len(list))
	}
	if list[0].Tag != "first" || list[0].Layout != "1:0,3:1" {
		t.Errorf("Expected most recently saved tag first, got %+v", list[0])
	}

	if err := store.Delete("first"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := store.Get("first"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete("first"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDuckStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.duckdb")

	store := createTestDuckStore(t, path)
	store.Save("skilling", mustParse(t, "5:0"), models.SourceImport)
	store.Close()

	reopened := createTestDuckStore(t, path)
	defer reopened.Close()

	rec, err := reopened.Get("skilling")
	if err != nil {
		t.Fatalf("Expected layout to persist: %v", err)
	}
	if rec.Layout != "5:0" {
		t.Errorf("Unexpected layout %q", rec.Layout)
	}

	if _, err := reopened.Save("skilling", mustParse(t, "6:0"), models.SourceMove); err != nil {
		t.Fatalf("Failed to save after reopen: %v", err)
	}
	rec, _ = reopened.Get("skilling")
	if rec.Layout != "6:0" {
		t.Errorf("Expected sequence to continue after reopen, got %q", rec.Layout)
	}
}
