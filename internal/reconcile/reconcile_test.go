package reconcile

import (
	"testing"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/stretchr/testify/assert"
)

// fakeCatalog: 100, 101 and 102 are variants of 100; 9100 and 9200 are the
// placeholders of 100 and 200.
type fakeCatalog struct{}

var placeholders = map[int]int{100: 9100, 200: 9200}

func (fakeCatalog) NonPlaceholderID(id int) int {
	for real, ph := range placeholders {
		if ph == id {
			return real
		}
	}
	return id
}

func (fakeCatalog) SwitchPlaceholderID(id int) int {
	for real, ph := range placeholders {
		if ph == id {
			return real
		}
		if real == id {
			return ph
		}
	}
	return -1
}

func (fakeCatalog) VariationBaseID(id int) int {
	if id >= 100 && id <= 102 {
		return 100
	}
	return id
}

func (c fakeCatalog) HasVariants(id int) bool {
	return c.VariationBaseID(id) == 100
}

func layoutOf(m map[int]int) *layout.Layout {
	l := layout.New()
	for index, id := range m {
		l.Put(id, index)
	}
	return l
}

func pairs(l *layout.Layout) map[int]int {
	m := make(map[int]int)
	for _, p := range l.Pairs() {
		m[p.Index] = p.ItemID
	}
	return m
}

func items(ids ...int) []models.ItemInstance {
	out := make([]models.ItemInstance, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.ItemInstance{ItemID: id, Quantity: 1})
	}
	return out
}

func assignedIDs(assigned map[int]models.ItemInstance) map[int]int {
	m := make(map[int]int)
	for index, inst := range assigned {
		m[index] = inst.ItemID
	}
	return m
}

func TestAssignItemPositions(t *testing.T) {
	tests := []struct {
		name       string
		layout     map[int]int
		instances  []int
		want       map[int]int
		wantLayout map[int]int
	}{
		{
			name:       "exact match then unmatched variant inserted",
			layout:     map[int]int{0: 100},
			instances:  []int{100, 101},
			want:       map[int]int{0: 100, 1: 101},
			wantLayout: map[int]int{0: 100, 1: 101},
		},
		{
			name:       "exact match wins over earlier variant",
			layout:     map[int]int{0: 101, 5: 100},
			instances:  []int{100, 101},
			want:       map[int]int{0: 101, 5: 100},
			wantLayout: map[int]int{0: 101, 5: 100},
		},
		{
			name:       "placeholder in layout matches real item",
			layout:     map[int]int{3: 9100},
			instances:  []int{100},
			want:       map[int]int{3: 100},
			wantLayout: map[int]int{3: 9100},
		},
		{
			name:       "any variant takes a free group slot",
			layout:     map[int]int{2: 101, 4: 50},
			instances:  []int{102},
			want:       map[int]int{2: 102},
			wantLayout: map[int]int{2: 101, 4: 50},
		},
		{
			name:       "non variant exact and placeholder lookups",
			layout:     map[int]int{0: 300, 6: 9200},
			instances:  []int{300, 200},
			want:       map[int]int{0: 300, 6: 200},
			wantLayout: map[int]int{0: 300, 6: 9200},
		},
		{
			name:       "non variant missing from layout inserted at first gap",
			layout:     map[int]int{0: 300, 1: 301, 3: 303},
			instances:  []int{400},
			want:       map[int]int{2: 400},
			wantLayout: map[int]int{0: 300, 1: 301, 2: 400, 3: 303},
		},
		{
			name:       "instances without an item id are ignored",
			layout:     map[int]int{0: 300},
			instances:  []int{0, -1, 300},
			want:       map[int]int{0: 300},
			wantLayout: map[int]int{0: 300},
		},
		{
			name:       "only invalid ids assign nothing",
			layout:     map[int]int{0: 300},
			instances:  []int{0, -1},
			want:       map[int]int{},
			wantLayout: map[int]int{0: 300},
		},
		{
			name:       "duplicate live ids count once",
			layout:     map[int]int{0: 300},
			instances:  []int{300, 300},
			want:       map[int]int{0: 300},
			wantLayout: map[int]int{0: 300},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := layoutOf(tt.layout)
			r := New(fakeCatalog{})

			assigned := r.AssignItemPositions(l, items(tt.instances...))

			assert.Equal(t, tt.want, assignedIDs(assigned))
			assert.Equal(t, tt.wantLayout, pairs(l))
		})
	}
}

func TestCalculateFakeItems(t *testing.T) {
	r := New(fakeCatalog{})

	t.Run("layout placeholders and copies", func(t *testing.T) {
		l := layoutOf(map[int]int{0: 300, 1: 300, 2: 400})
		assigned := map[int]models.ItemInstance{0: {ItemID: 300, Quantity: 5}}

		fakes := r.CalculateFakeItems(l, assigned)

		assert.Equal(t, []models.FakeItem{
			{Index: 1, ItemID: 300, LayoutPlaceholder: false, Quantity: 5},
			{Index: 2, ItemID: 400, LayoutPlaceholder: true, Quantity: -1},
		}, fakes)
	})

	t.Run("copy carries the live variant id", func(t *testing.T) {
		l := layoutOf(map[int]int{0: 100, 4: 100})
		assigned := map[int]models.ItemInstance{0: {ItemID: 101, Quantity: 3}}

		fakes := r.CalculateFakeItems(l, assigned)

		assert.Equal(t, []models.FakeItem{
			{Index: 4, ItemID: 101, LayoutPlaceholder: false, Quantity: 3},
		}, fakes)
	})

	t.Run("fully assigned layout has no fakes", func(t *testing.T) {
		l := layoutOf(map[int]int{0: 300})
		assigned := map[int]models.ItemInstance{0: {ItemID: 300, Quantity: 1}}

		assert.Empty(t, r.CalculateFakeItems(l, assigned))
	})
}

func TestReconcileEndToEnd(t *testing.T) {
	l := layoutOf(map[int]int{0: 100, 8: 100, 1: 300})
	r := New(fakeCatalog{})

	assigned := r.AssignItemPositions(l, items(101, 300))
	fakes := r.CalculateFakeItems(l, assigned)

	assert.Equal(t, map[int]int{0: 101, 1: 300}, assignedIDs(assigned))
	assert.Equal(t, []models.FakeItem{
		{Index: 8, ItemID: 101, LayoutPlaceholder: false, Quantity: 1},
	}, fakes)
}
