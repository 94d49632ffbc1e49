package generator

import (
	"testing"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/stretchr/testify/assert"
)

type fakeCatalog struct {
	canonical     map[int]int
	base          map[int]int
	realOf        map[int]int
	subContainers map[int]bool
}

func (f *fakeCatalog) Canonicalize(id int) int {
	if to, ok := f.canonical[id]; ok {
		return to
	}
	return id
}

func (f *fakeCatalog) NonPlaceholderID(id int) int {
	if real, ok := f.realOf[id]; ok {
		return real
	}
	return id
}

func (f *fakeCatalog) BaseID(id int) int {
	if base, ok := f.base[id]; ok {
		return base
	}
	return id
}

func (f *fakeCatalog) HasSubContainer(inventory []int) bool {
	for _, id := range inventory {
		if f.subContainers[id] {
			return true
		}
	}
	return false
}

func pairs(l *layout.Layout) map[int]int {
	m := make(map[int]int)
	for _, p := range l.Pairs() {
		m[p.Index] = p.ItemID
	}
	return m
}

func layoutOf(m map[int]int) *layout.Layout {
	l := layout.New()
	for index, id := range m {
		l.Put(id, index)
	}
	return l
}

func TestLimitDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		limit int
		want  []int
	}{
		{"single run over limit", []int{5, 5, 5, 5}, 2, []int{5, 5}},
		{"trailing run over limit", []int{5, 5, 3, 3, 3}, 2, []int{5, 5, 3, 3}},
		{"runs under limit kept", []int{1, 1, 2, 3, 3}, 4, []int{1, 1, 2, 3, 3}},
		// equal items that are not adjacent are limited per run, not globally
		{"non-adjacent duplicates", []int{5, 3, 5, 5, 5}, 2, []int{5, 3, 5, 5}},
		{"limit one", []int{1, 1, 2, 1, 1}, 1, []int{1, 2, 1}},
		{"empty", nil, 3, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LimitDuplicates(tt.items, tt.limit))
		})
	}
}

func TestGenerate(t *testing.T) {
	catalog := &fakeCatalog{
		canonical:     map[int]int{111: 110},
		base:          map[int]int{51: 50},
		realOf:        map[int]int{9050: 50},
		subContainers: map[int]bool{500: true},
	}
	g := New(catalog)

	tests := []struct {
		name  string
		input Input
		want  map[int]int
	}{
		{
			name:  "equipped zigzag then extra on next row",
			input: Input{Equipped: []int{10, 11, 12}, Extra: []int{20}},
			want:  map[int]int{0: 10, 8: 11, 1: 12, 16: 20},
		},
		{
			name: "inventory continues below equipped with duplicates limited",
			input: Input{
				Equipped:       []int{10},
				Inventory:      []int{-1, 30, 30, 30, 31},
				DuplicateLimit: 2,
			},
			want: map[int]int{0: 10, 16: 30, 24: 30, 17: 31},
		},
		{
			name:  "zero duplicate limit keeps one per run",
			input: Input{Inventory: []int{20, 20, 21, 20}},
			want:  map[int]int{0: 20, 8: 21, 1: 20},
		},
		{
			name:  "equipped ids are canonicalized",
			input: Input{Equipped: []int{-1, 111}},
			want:  map[int]int{0: 110},
		},
		{
			name: "sub-container laid out linearly when pouch carried",
			input: Input{
				Inventory:    []int{500},
				SubContainer: []int{600, 601},
				Extra:        []int{700},
			},
			want: map[int]int{0: 500, 16: 600, 17: 601, 24: 700},
		},
		{
			name: "sub-container dropped without pouch",
			input: Input{
				Inventory:    []int{40},
				SubContainer: []int{600, 601},
			},
			want: map[int]int{0: 40},
		},
		{
			name: "displaced item relocated after generated block",
			input: Input{
				Equipped: []int{10},
				Current:  layoutOf(map[int]int{0: 50, 1: 51}),
			},
			want: map[int]int{0: 10, 1: 51, 16: 50},
		},
		{
			name: "relocation skips slots used by the previous layout",
			input: Input{
				Equipped: []int{10},
				Current:  layoutOf(map[int]int{0: 50, 16: 70, 17: 71}),
			},
			want: map[int]int{0: 10, 16: 70, 17: 71, 18: 50},
		},
		{
			name: "displaced variant already shown is not relocated",
			input: Input{
				Equipped:  []int{60},
				Inventory: []int{50},
				Current:   layoutOf(map[int]int{0: 51}),
			},
			want: map[int]int{0: 60, 16: 50},
		},
		{
			name: "displaced placeholder of shown item is not relocated",
			input: Input{
				Equipped:  []int{60},
				Inventory: []int{50},
				Current:   layoutOf(map[int]int{0: 9050}),
			},
			want: map[int]int{0: 60, 16: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pairs(g.Generate(tt.input)))
		})
	}
}

func TestGenerateDoesNotModifyCurrent(t *testing.T) {
	g := New(&fakeCatalog{})
	current := layoutOf(map[int]int{0: 50})

	g.Generate(Input{Equipped: []int{10}, Current: current})

	assert.Equal(t, map[int]int{0: 50}, pairs(current))
}

func TestGenerateIsIdempotent(t *testing.T) {
	g := New(&fakeCatalog{})
	in := Input{
		Equipped:       []int{10, 11},
		Inventory:      []int{20, 20, 21},
		Extra:          []int{30},
		Current:        layoutOf(map[int]int{0: 99, 3: 98}),
		DuplicateLimit: 4,
	}

	first := g.Generate(in)
	assert.Equal(t, map[int]int{0: 10, 8: 11, 16: 20, 24: 20, 17: 21, 32: 30, 3: 98, 40: 99}, pairs(first))

	in.Current = first
	second := g.Generate(in)
	assert.Equal(t, first.String(), second.String())
}

func TestGenerateDropsDisplacedPastBound(t *testing.T) {
	assert.Equal(t, 416, RelocationBound)

	extra := make([]int, RelocationBound)
	for i := range extra {
		extra[i] = 1000 + i
	}

	g := New(&fakeCatalog{})
	out := g.Generate(Input{Extra: extra, Current: layoutOf(map[int]int{0: 50})})

	assert.Equal(t, RelocationBound, out.Len())
	assert.Equal(t, -1, out.IndexFor(50))
}
