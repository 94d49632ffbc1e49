// Package generator builds a tag tab layout from the player's current gear,
// inventory and extra items, keeping what it can of the previous layout.
package generator

import (
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
)

// RelocationBound caps how far past the generated block displaced items are
// walked looking for a free slot. Integer division makes it 416.
const RelocationBound = 2000 / 38 * 8

var logger = logging.New("Generator")

// Catalog is the item lookup the generator depends on.
type Catalog interface {
	Canonicalize(itemID int) int
	NonPlaceholderID(itemID int) int
	BaseID(nonPlaceholderID int) int
	HasSubContainer(inventory []int) bool
}

// Input is everything one generation run reads. Current is not modified.
type Input struct {
	Equipped     []int
	Inventory    []int
	SubContainer []int
	Extra        []int
	Current      *layout.Layout
	// DuplicateLimit caps each run of identical inventory items. Zero or less
	// keeps one item per run.
	DuplicateLimit int
}

// Generator lays items out in zigzag order.
type Generator struct {
	catalog Catalog
}

// New creates a generator backed by catalog.
func New(catalog Catalog) *Generator {
	return &Generator{catalog: catalog}
}

// placement carries the state shared by consecutive layoutItems calls.
type placement struct {
	current   *layout.Layout
	preview   *layout.Layout
	displaced []int
	cursor    int
}

// Generate returns a fresh layout for in.
func (g *Generator) Generate(in Input) *layout.Layout {
	current := in.Current
	if current == nil {
		current = layout.New()
	}

	subContainer := in.SubContainer
	if !g.catalog.HasSubContainer(in.Inventory) {
		subContainer = nil
	}

	equipped := make([]int, 0, len(in.Equipped))
	for _, id := range in.Equipped {
		if id > 0 {
			id = g.catalog.Canonicalize(id)
		}
		equipped = append(equipped, id)
	}

	logger.Debugf("generate layout")
	logger.Debugf("equipped gear is %v", equipped)
	logger.Debugf("inventory is %v", in.Inventory)

	p := &placement{current: current, preview: layout.New()}

	p.layoutItems(equipped, true)

	inventory := filterEmpty(in.Inventory)
	if in.DuplicateLimit <= 0 {
		inventory = LimitDuplicates(inventory, 1)
	} else {
		inventory = LimitDuplicates(inventory, in.DuplicateLimit)
	}
	p.layoutItems(inventory, true)

	if subContainer != nil {
		p.layoutItems(subContainer, false)
	}
	p.layoutItems(in.Extra, false)

	displacedStart := p.cursor

	for _, pair := range current.Pairs() {
		if p.preview.ItemAt(pair.Index) == -1 {
			p.preview.Put(pair.ItemID, pair.Index)
		}
	}

	displaced := make([]int, 0, len(p.displaced))
	for _, id := range p.displaced {
		if !g.containsItem(p.preview, id) {
			displaced = append(displaced, id)
		}
	}

	for j := displacedStart; len(displaced) > 0 && j < RelocationBound; j++ {
		if current.ItemAt(j) != -1 {
			continue
		}
		p.preview.Put(displaced[0], j)
		displaced = displaced[1:]
	}
	if len(displaced) > 0 {
		logger.Debugf("dropped %d displaced items past index %d", len(displaced), RelocationBound)
	}

	return p.preview
}

// layoutItems places items from the cursor onward and records every previous
// occupant it overwrites. If anything was placed the cursor then moves to the
// next row boundary after the highest index in the preview.
func (p *placement) layoutItems(items []int, zigzag bool) {
	placed := false
	for _, itemID := range items {
		if itemID <= 0 {
			continue
		}

		index := p.cursor
		if zigzag {
			// cursor is never negative, so this cannot fail
			index, _ = layout.ToZigZagIndex(p.cursor, 0, 0)
		}

		p.preview.Put(itemID, index)
		if previous := p.current.ItemAt(index); previous != -1 {
			p.displaced = append(p.displaced, previous)
		}
		p.cursor++
		placed = true
	}

	if !placed {
		return
	}

	highest := p.preview.MaxIndex()
	if highest < 0 {
		return
	}
	if zigzag {
		p.cursor = (highest/layout.ZigZagPeriod*2 + 2) * layout.RowWidth
	} else {
		p.cursor = (highest/layout.RowWidth + 1) * layout.RowWidth
	}
}

// containsItem reports whether the preview already shows the same item as id,
// ignoring placeholders and variations.
func (g *Generator) containsItem(preview *layout.Layout, id int) bool {
	base := g.catalog.BaseID(g.catalog.NonPlaceholderID(id))
	found := false
	preview.UsedItemIDs().Each(func(item int) {
		if !found && g.catalog.BaseID(g.catalog.NonPlaceholderID(item)) == base {
			found = true
		}
	})
	return found
}

// LimitDuplicates keeps at most limit copies of every run of consecutive equal
// items. Equal items that are not adjacent are separate runs.
func LimitDuplicates(items []int, limit int) []int {
	out := make([]int, 0, len(items))
	run := 0
	for i, id := range items {
		if i > 0 && items[i-1] == id {
			run++
		} else {
			run = 1
		}
		if run <= limit {
			out = append(out, id)
		}
	}
	return out
}

func filterEmpty(items []int) []int {
	out := make([]int, 0, len(items))
	for _, id := range items {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}
