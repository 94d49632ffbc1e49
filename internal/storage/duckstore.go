package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// DuckOptions tunes the DuckDB connection.
type DuckOptions struct {
	Threads      int
	MemoryLimit  string
	HistoryLimit int
}

// DuckStore implements Store on a DuckDB file. Every save is a row in
// layout_revisions; the newest row of a tag is its current layout.
type DuckStore struct {
	db           *sql.DB
	dbPath       string
	historyLimit int

	// seq orders revisions saved within the same timestamp tick
	seqMu sync.Mutex
	seq   int64
}

// NewDuckStore opens (or creates) the database at dbPath.
func NewDuckStore(dbPath string, opts DuckOptions) (*DuckStore, error) {
	logger.Infof("opening DuckDB layout store at %s", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		var pragmas []string
		if opts.MemoryLimit != "" {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
		}
		if opts.Threads > 0 {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
		}
		pragmas = append(pragmas, "PRAGMA enable_progress_bar=false")

		for _, pragma := range pragmas {
			logger.Debugf("executing: %s", pragma)
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS layout_revisions (
			id         VARCHAR PRIMARY KEY,
			seq        BIGINT NOT NULL,
			tag        VARCHAR NOT NULL,
			layout     VARCHAR NOT NULL,
			item_count INTEGER NOT NULL,
			source     VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	ds := &DuckStore{
		db:           db,
		dbPath:       dbPath,
		historyLimit: opts.HistoryLimit,
	}
	if err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM layout_revisions`).Scan(&ds.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read revision sequence: %w", err)
	}

	return ds, nil
}

func (ds *DuckStore) nextSeq() int64 {
	ds.seqMu.Lock()
	defer ds.seqMu.Unlock()
	ds.seq++
	return ds.seq
}

// Get retrieves the newest revision of a tag.
func (ds *DuckStore) Get(tag string) (*models.LayoutRecord, error) {
	row := ds.db.QueryRow(`
		SELECT tag, layout, id, item_count, created_at
		FROM layout_revisions
		WHERE tag = ?
		ORDER BY seq DESC
		LIMIT 1
	`, tag)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("querying layout: %w", err)
	}
	return rec, nil
}

// Save inserts a revision and prunes history beyond the limit.
func (ds *DuckStore) Save(tag string, l *layout.Layout, source models.RevisionSource) (*models.LayoutRecord, error) {
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}

	rec := &models.LayoutRecord{
		Tag:        tag,
		Layout:     l.String(),
		RevisionID: uuid.New().String(),
		ItemCount:  l.Len(),
		UpdatedAt:  time.Now().UTC(),
	}

	tx, err := ds.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO layout_revisions (id, seq, tag, layout, item_count, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.RevisionID, ds.nextSeq(), tag, rec.Layout, rec.ItemCount, string(source), rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting revision: %w", err)
	}

	if ds.historyLimit > 0 {
		_, err = tx.Exec(`
			DELETE FROM layout_revisions
			WHERE tag = ? AND seq NOT IN (
				SELECT seq FROM layout_revisions WHERE tag = ? ORDER BY seq DESC LIMIT ?
			)
		`, tag, tag, ds.historyLimit)
		if err != nil {
			return nil, fmt.Errorf("pruning history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing revision: %w", err)
	}
	return rec, nil
}

// List returns the newest revision of every tag, most recent first.
func (ds *DuckStore) List(limit int) ([]*models.LayoutRecord, error) {
	query := `
		SELECT tag, layout, id, item_count, created_at
		FROM (
			SELECT *, row_number() OVER (PARTITION BY tag ORDER BY seq DESC) AS rn
			FROM layout_revisions
		)
		WHERE rn = 1
		ORDER BY seq DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := ds.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	defer rows.Close()

	list := make([]*models.LayoutRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Delete removes every revision of a tag.
func (ds *DuckStore) Delete(tag string) error {
	res, err := ds.db.Exec(`DELETE FROM layout_revisions WHERE tag = ?`, tag)
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, tag)
	}
	return nil
}

// History returns the stored revisions of a tag, newest first.
func (ds *DuckStore) History(tag string, limit int) ([]*models.LayoutRevision, error) {
	query := `
		SELECT id, tag, layout, source, created_at
		FROM layout_revisions
		WHERE tag = ?
		ORDER BY seq DESC
	`
	args := []interface{}{tag}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := ds.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	revs := make([]*models.LayoutRevision, 0)
	for rows.Next() {
		var rev models.LayoutRevision
		var source string
		if err := rows.Scan(&rev.ID, &rev.Tag, &rev.Layout, &source, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		rev.Source = models.RevisionSource(source)
		revs = append(revs, &rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tag)
	}
	return revs, nil
}

// Close closes the database.
func (ds *DuckStore) Close() error {
	if ds.db == nil {
		return nil
	}
	err := ds.db.Close()
	ds.db = nil
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.LayoutRecord, error) {
	var rec models.LayoutRecord
	if err := row.Scan(&rec.Tag, &rec.Layout, &rec.RevisionID, &rec.ItemCount, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
