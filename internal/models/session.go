package models

import "time"

// Assignment places a live instance on a layout slot.
type Assignment struct {
	Index int          `json:"index"`
	Item  ItemInstance `json:"item"`
}

// ViewSession is a render view of one tag: the last reconciliation of live
// items against the tag's layout.
type ViewSession struct {
	ID           string       `json:"id"`
	Tag          string       `json:"tag"`
	Layout       string       `json:"layout"`
	Assignments  []Assignment `json:"assignments"`
	FakeItems    []FakeItem   `json:"fakeItems"`
	Inserted     int          `json:"inserted,omitempty"` // slots added to the layout by the last reconcile
	CreatedAt    time.Time    `json:"createdAt"`
	LastAccessed time.Time    `json:"-"`
}

// NewViewSession creates an empty view of tag.
func NewViewSession(id, tag string) *ViewSession {
	now := time.Now()
	return &ViewSession{
		ID:           id,
		Tag:          tag,
		Assignments:  make([]Assignment, 0),
		FakeItems:    make([]FakeItem, 0),
		CreatedAt:    now,
		LastAccessed: now,
	}
}
