// Package layout holds the sparse slot-index to item-id mapping that backs a
// tag tab, plus the primitives used to edit it.
package layout

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/zyedidia/generic/mapset"
)

var logger = logging.New("Layout")

var (
	// ErrMalformedEntry is returned for a serialized entry that is not an itemId:index pair.
	ErrMalformedEntry = errors.New("malformed layout entry")
	// ErrEmptySlot is returned when an edit needs an occupied slot and finds none.
	ErrEmptySlot = errors.New("slot is empty")
)

// Pair is one occupied slot.
type Pair struct {
	Index  int
	ItemID int
}

// Layout maps slot indexes to item ids. Ids may repeat across indexes; an id
// of zero or less is never stored.
type Layout struct {
	slots map[int]int
}

// New returns an empty layout.
func New() *Layout {
	return &Layout{slots: make(map[int]int)}
}

// Parse decodes a serialized layout and fails on the first malformed token.
func Parse(s string) (*Layout, error) {
	return parse(s, false)
}

// ParseTolerant decodes a serialized layout, logging and skipping malformed
// tokens instead of failing.
func ParseTolerant(s string) *Layout {
	l, _ := parse(s, true)
	return l
}

func parse(s string, tolerant bool) (*Layout, error) {
	l := New()
	if s == "" {
		return l, nil
	}

	for _, entry := range strings.Split(s, ",") {
		itemID, index, err := parseEntry(entry)
		if err != nil {
			if !tolerant {
				return nil, err
			}
			logger.Debugf("skipping entry %q of layout %q: %v", entry, s, err)
			continue
		}
		if index < 0 {
			logger.Debugf("removed item %d due to it having a negative index (%d)", itemID, index)
			continue
		}
		l.Put(itemID, index)
	}
	return l, nil
}

func parseEntry(entry string) (itemID, index int, err error) {
	parts := strings.Split(entry, ":")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedEntry, entry)
	}
	if itemID, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("parsing item id: %w", err)
	}
	if index, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("parsing index: %w", err)
	}
	return itemID, index, nil
}

// String serializes the layout as comma-separated itemId:index pairs in
// ascending index order.
func (l *Layout) String() string {
	var sb strings.Builder
	for i, p := range l.Pairs() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(p.ItemID))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(p.Index))
	}
	return sb.String()
}

// Clone returns an independent copy.
func (l *Layout) Clone() *Layout {
	c := New()
	for index, itemID := range l.slots {
		c.slots[index] = itemID
	}
	return c
}

// Put stores itemID at index. A non-positive itemID clears the index.
func (l *Layout) Put(itemID, index int) {
	if itemID <= 0 {
		delete(l.slots, index)
		return
	}
	l.slots[index] = itemID
}

// ItemAt returns the item at index, or -1 if the slot is empty.
func (l *Layout) ItemAt(index int) int {
	if itemID, ok := l.slots[index]; ok {
		return itemID
	}
	return -1
}

// IndexFor returns the lowest index holding exactly itemID, or -1. Variants and
// placeholders are not considered.
func (l *Layout) IndexFor(itemID int) int {
	for _, p := range l.Pairs() {
		if p.ItemID == itemID {
			return p.Index
		}
	}
	return -1
}

// IndexesFor returns every index holding exactly itemID, ascending.
func (l *Layout) IndexesFor(itemID int) []int {
	var indexes []int
	for _, p := range l.Pairs() {
		if p.ItemID == itemID {
			indexes = append(indexes, p.Index)
		}
	}
	return indexes
}

// UsedItemIDs returns the distinct item ids present.
func (l *Layout) UsedItemIDs() mapset.Set[int] {
	ids := mapset.New[int]()
	for _, itemID := range l.slots {
		ids.Put(itemID)
	}
	return ids
}

// UsedIndexes returns the occupied indexes, ascending.
func (l *Layout) UsedIndexes() []int {
	indexes := make([]int, 0, len(l.slots))
	for index := range l.slots {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}

// Pairs returns every occupied slot, ascending by index.
func (l *Layout) Pairs() []Pair {
	pairs := make([]Pair, 0, len(l.slots))
	for _, index := range l.UsedIndexes() {
		pairs = append(pairs, Pair{Index: index, ItemID: l.slots[index]})
	}
	return pairs
}

// MaxIndex returns the highest occupied index, or -1 for an empty layout.
func (l *Layout) MaxIndex() int {
	highest := -1
	for index := range l.slots {
		if index > highest {
			highest = index
		}
	}
	return highest
}

// FirstEmptyIndex returns the smallest unused index.
func (l *Layout) FirstEmptyIndex() int {
	return l.FirstEmptyIndexAfter(-1)
}

// FirstEmptyIndexAfter returns the smallest unused index greater than after.
func (l *Layout) FirstEmptyIndexAfter(after int) int {
	cursor := after
	for _, index := range l.UsedIndexes() {
		if index < cursor {
			continue
		}
		if index-cursor > 1 {
			break
		}
		cursor = index
	}
	return cursor + 1
}

// ClearIndex empties a slot.
func (l *Layout) ClearIndex(index int) {
	delete(l.slots, index)
}

// resolveIdentity picks the id an edit at index should use. A live id that
// differs from the stored one is written through to every slot holding the
// stored id so duplicates of one logical item stay consistent.
func (l *Layout) resolveIdentity(index, liveItemID int) int {
	stored := l.ItemAt(index)
	if liveItemID == -1 {
		return stored
	}
	if stored != liveItemID {
		for _, i := range l.IndexesFor(stored) {
			l.Put(liveItemID, i)
		}
	}
	return liveItemID
}

// MoveItem swaps the occupants of draggedIndex and targetIndex. draggedItemID is
// the id the user sees on the dragged slot, or -1 to use the stored one.
func (l *Layout) MoveItem(draggedIndex, targetIndex, draggedItemID int) error {
	if draggedItemID == -1 && l.ItemAt(draggedIndex) == -1 {
		return fmt.Errorf("moving index %d: %w", draggedIndex, ErrEmptySlot)
	}
	draggedItemID = l.resolveIdentity(draggedIndex, draggedItemID)

	targetItemID := l.ItemAt(targetIndex)

	l.ClearIndex(draggedIndex)
	l.ClearIndex(targetIndex)
	l.Put(draggedItemID, targetIndex)
	if targetItemID != -1 {
		l.Put(targetItemID, draggedIndex)
	}
	return nil
}

// DuplicateItem places a second copy of the item at clickedIndex into the first
// empty slot after it and returns that slot. liveItemID follows the same rules
// as MoveItem.
func (l *Layout) DuplicateItem(clickedIndex, liveItemID int) int {
	duplicateIndex := l.FirstEmptyIndexAfter(clickedIndex)
	itemID := l.resolveIdentity(clickedIndex, liveItemID)
	l.Put(itemID, duplicateIndex)
	return duplicateIndex
}

// IsEmpty reports whether no slot is occupied.
func (l *Layout) IsEmpty() bool {
	return len(l.slots) == 0
}

// Len returns the number of occupied slots.
func (l *Layout) Len() int {
	return len(l.slots)
}

// CountItemsWithID returns how many slots hold exactly itemID.
func (l *Layout) CountItemsWithID(itemID int) int {
	count := 0
	for _, id := range l.slots {
		if id == itemID {
			count++
		}
	}
	return count
}
