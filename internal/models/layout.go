package models

import "time"

// RevisionSource names the operation that produced a layout revision.
type RevisionSource string

const (
	SourceAuto      RevisionSource = "auto"
	SourceMove      RevisionSource = "move"
	SourceDuplicate RevisionSource = "duplicate"
	SourceClear     RevisionSource = "clear"
	SourceImport    RevisionSource = "import"
	SourceReconcile RevisionSource = "reconcile"
)

// LayoutRecord is the stored layout of one tag.
type LayoutRecord struct {
	Tag        string    `json:"tag" msgpack:"tag"`
	Layout     string    `json:"layout" msgpack:"layout"` // itemId:index pairs, comma separated
	RevisionID string    `json:"revisionId" msgpack:"revisionId"`
	ItemCount  int       `json:"itemCount" msgpack:"itemCount"`
	UpdatedAt  time.Time `json:"updatedAt" msgpack:"updatedAt"`
}

// LayoutRevision is one entry in a tag's save history.
type LayoutRevision struct {
	ID        string         `json:"id"`
	Tag       string         `json:"tag"`
	Layout    string         `json:"layout"`
	Source    RevisionSource `json:"source"`
	CreatedAt time.Time      `json:"createdAt"`
}

// SlotPair is one occupied slot of a layout.
type SlotPair struct {
	Index  int `json:"index" msgpack:"i"`
	ItemID int `json:"itemId" msgpack:"id"`
}

// LayoutView is a layout record expanded into its slots.
type LayoutView struct {
	LayoutRecord
	Pairs []SlotPair `json:"pairs"`
}

// CompactLayout is the msgpack payload for a layout.
type CompactLayout struct {
	Tag        string     `msgpack:"tag"`
	RevisionID string     `msgpack:"rev"`
	Pairs      []SlotPair `msgpack:"pairs"`
}
