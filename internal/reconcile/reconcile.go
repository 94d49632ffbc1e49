// Package reconcile matches live item instances to the slots of a saved layout
// and works out which slots have to be drawn as fake items.
package reconcile

import (
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/zyedidia/generic/mapset"
)

var logger = logging.New("Reconcile")

// Catalog is the item lookup the reconciler depends on.
type Catalog interface {
	NonPlaceholderID(itemID int) int
	SwitchPlaceholderID(itemID int) int
	VariationBaseID(nonPlaceholderID int) int
	HasVariants(nonPlaceholderID int) bool
}

// Reconciler assigns live instances to layout slots.
type Reconciler struct {
	catalog Catalog
}

// New creates a reconciler backed by catalog.
func New(catalog Catalog) *Reconciler {
	return &Reconciler{catalog: catalog}
}

// matcher picks a free slot of a variant group for itemID, or returns -1.
type matcher func(group []layout.Pair, itemID int, assigned map[int]models.ItemInstance) int

// AssignItemPositions maps layout indexes to the live instances drawn there.
// Instances that have no slot yet are added to l at its first empty index.
// Instances with a non-positive id are ignored.
func (r *Reconciler) AssignItemPositions(l *layout.Layout, instances []models.ItemInstance) map[int]models.ItemInstance {
	assigned := make(map[int]models.ItemInstance)

	unique := make([]models.ItemInstance, 0, len(instances))
	seen := mapset.New[int]()
	for _, inst := range instances {
		if inst.ItemID <= 0 {
			logger.Debugf("skipping live instance without an item id (%d)", inst.ItemID)
			continue
		}
		if seen.Has(inst.ItemID) {
			continue
		}
		seen.Put(inst.ItemID)
		unique = append(unique, inst)
	}

	r.assignVariants(l, unique, assigned)
	r.assignNonVariants(l, unique, assigned)
	return assigned
}

func (r *Reconciler) hasVariants(itemID int) bool {
	return r.catalog.HasVariants(r.catalog.NonPlaceholderID(itemID))
}

func (r *Reconciler) variationBase(itemID int) int {
	return r.catalog.VariationBaseID(r.catalog.NonPlaceholderID(itemID))
}

func (r *Reconciler) assignVariants(l *layout.Layout, instances []models.ItemInstance, assigned map[int]models.ItemInstance) {
	var bases []int
	pending := make(map[int][]models.ItemInstance)
	for _, inst := range instances {
		if !r.hasVariants(inst.ItemID) {
			continue
		}
		base := r.variationBase(inst.ItemID)
		if _, ok := pending[base]; !ok {
			bases = append(bases, base)
		}
		pending[base] = append(pending[base], inst)
	}

	groups := make(map[int][]layout.Pair)
	for _, p := range l.Pairs() {
		if !r.hasVariants(p.ItemID) {
			continue
		}
		base := r.variationBase(p.ItemID)
		groups[base] = append(groups[base], p)
	}

	passes := []struct {
		name  string
		match matcher
	}{
		{"pass 1 (exact itemid match)", matchExact},
		{"pass 2 (placeholder match)", r.matchPlaceholder},
		{"pass 3 (variant item match)", matchAnyVariant},
	}

	for _, base := range bases {
		remaining := pending[base]
		group := groups[base]

		for _, pass := range passes {
			remaining = assignPass(group, remaining, assigned, pass.match, pass.name)
		}

		for _, inst := range remaining {
			// the id already has a slot that another instance took this round
			if l.IndexFor(inst.ItemID) != -1 {
				continue
			}
			index := l.FirstEmptyIndex()
			l.Put(inst.ItemID, index)
			assigned[index] = inst
			logger.Debugf("item %d assigned on pass 4 (assign to empty spot) to index %d", inst.ItemID, index)
		}
	}
}

// assignPass tries match for every pending instance and returns the ones it
// could not place.
func assignPass(group []layout.Pair, pending []models.ItemInstance, assigned map[int]models.ItemInstance, match matcher, name string) []models.ItemInstance {
	if len(group) == 0 {
		return pending
	}

	remaining := make([]models.ItemInstance, 0, len(pending))
	for _, inst := range pending {
		index := match(group, inst.ItemID, assigned)
		if index == -1 {
			remaining = append(remaining, inst)
			continue
		}
		assigned[index] = inst
		logger.Debugf("item %d assigned on %s to index %d", inst.ItemID, name, index)
	}
	return remaining
}

func freeSlotOf(group []layout.Pair, itemID int, assigned map[int]models.ItemInstance) int {
	if itemID <= 0 {
		return -1
	}
	for _, p := range group {
		if p.ItemID != itemID {
			continue
		}
		if _, taken := assigned[p.Index]; !taken {
			return p.Index
		}
	}
	return -1
}

func matchExact(group []layout.Pair, itemID int, assigned map[int]models.ItemInstance) int {
	return freeSlotOf(group, itemID, assigned)
}

func (r *Reconciler) matchPlaceholder(group []layout.Pair, itemID int, assigned map[int]models.ItemInstance) int {
	return freeSlotOf(group, r.catalog.SwitchPlaceholderID(itemID), assigned)
}

func matchAnyVariant(group []layout.Pair, _ int, assigned map[int]models.ItemInstance) int {
	for _, p := range group {
		if _, taken := assigned[p.Index]; !taken {
			return p.Index
		}
	}
	return -1
}

// assignNonVariants places items without variants by direct lookup. A direct
// match replaces whatever the variant passes put on that slot.
func (r *Reconciler) assignNonVariants(l *layout.Layout, instances []models.ItemInstance, assigned map[int]models.ItemInstance) {
	for _, inst := range instances {
		if r.hasVariants(inst.ItemID) {
			continue
		}

		index := l.IndexFor(inst.ItemID)
		if index == -1 {
			if other := r.catalog.SwitchPlaceholderID(inst.ItemID); other > 0 {
				index = l.IndexFor(other)
			}
		}
		if index == -1 {
			index = l.FirstEmptyIndex()
			l.Put(inst.ItemID, index)
			logger.Debugf("item %d not in layout, added at index %d", inst.ItemID, index)
		}
		assigned[index] = inst
	}
}

// CalculateFakeItems returns a fake item for every layout slot without an
// assigned instance, ordered by index. A slot whose item is drawn elsewhere
// copies that instance's id and quantity; otherwise it is a layout placeholder.
func (r *Reconciler) CalculateFakeItems(l *layout.Layout, assigned map[int]models.ItemInstance) []models.FakeItem {
	pairs := l.Pairs()
	fakes := make([]models.FakeItem, 0)
	for _, p := range pairs {
		if _, ok := assigned[p.Index]; ok {
			continue
		}

		fake := models.FakeItem{
			Index:             p.Index,
			ItemID:            p.ItemID,
			LayoutPlaceholder: true,
			Quantity:          -1,
		}
		for _, other := range pairs {
			if other.ItemID != p.ItemID {
				continue
			}
			if inst, ok := assigned[other.Index]; ok {
				fake.ItemID = inst.ItemID
				fake.LayoutPlaceholder = false
				fake.Quantity = inst.Quantity
				break
			}
		}
		fakes = append(fakes, fake)
	}
	return fakes
}
