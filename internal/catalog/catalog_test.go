package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalogT(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c := defaultCatalogT(t)

	assert.Equal(t, "Rune pouch", c.Name(12791))
	assert.Equal(t, "Rune pouch", c.Name(24305), "placeholder takes the real item's name")
	assert.Equal(t, "Unknown item", c.Name(1))
	assert.Equal(t, "Rune pouch (24305,ph)", c.Describe(24305))
	assert.Equal(t, "Air rune (556)", c.Describe(556))
}

func TestPlaceholders(t *testing.T) {
	c := defaultCatalogT(t)

	assert.True(t, c.IsPlaceholder(24305))
	assert.False(t, c.IsPlaceholder(12791))

	assert.Equal(t, 12791, c.NonPlaceholderID(24305))
	assert.Equal(t, 12791, c.NonPlaceholderID(12791))

	assert.Equal(t, 24305, c.SwitchPlaceholderID(12791))
	assert.Equal(t, 12791, c.SwitchPlaceholderID(24305))
	assert.Equal(t, -1, c.SwitchPlaceholderID(558), "no placeholder twin")
}

func TestCanonicalize(t *testing.T) {
	c := defaultCatalogT(t)

	assert.Equal(t, 11850, c.Canonicalize(11851))
	assert.Equal(t, 11850, c.Canonicalize(11850))
	assert.Equal(t, 556, c.Canonicalize(556))
}

func TestVariations(t *testing.T) {
	c := defaultCatalogT(t)

	assert.Equal(t, 1704, c.BaseID(1712))
	assert.Equal(t, 1704, c.BaseID(1704))
	assert.Equal(t, 556, c.BaseID(556))

	assert.True(t, c.HasVariants(11978))
	assert.False(t, c.HasVariants(556))
	assert.Equal(t, []int{556}, c.Variations(556))
	assert.Len(t, c.Variations(1704), 7)
}

func TestVariationBaseIDTierFamily(t *testing.T) {
	c := defaultCatalogT(t)

	tests := []struct {
		name string
		id   int
		want int
	}{
		{"easy tier shares lowest easy id", 2678, 2677},
		{"medium tier", 2803, 2801},
		{"hard tier", 2723, 2722},
		{"elite tier", 12074, 12073},
		{"beginner keeps own id", 23182, 23182},
		{"master keeps own id", 19835, 19835},
		{"family member without tier model", 713, 713},
		{"outside any family", 1712, 1704},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.VariationBaseID(tt.id))
		})
	}

	assert.Equal(t, 713, c.BaseID(2678), "plain base ignores tiers")
}

func TestSubContainer(t *testing.T) {
	c := defaultCatalogT(t)

	assert.True(t, c.HasSubContainer([]int{-1, 12791}))
	assert.True(t, c.HasSubContainer([]int{24416}), "locked variant counts")
	assert.True(t, c.HasSubContainer([]int{27509}))
	assert.False(t, c.HasSubContainer([]int{556, -1}))
	assert.False(t, c.HasSubContainer(nil))

	slots := []models.SubContainerSlot{
		{Rune: 1, Amount: 100},
		{Rune: 4, Amount: 0},
		{Rune: 99, Amount: 5},
		{Rune: 8, Amount: 12},
	}
	assert.Equal(t, []int{556, 565}, c.SubContainerContents(slots))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "items: [\n"},
		{"non-positive id", "items:\n  - {id: 0, name: Nothing}\n"},
		{"own placeholder", "items:\n  - {id: 5, name: Loop, placeholder: 5}\n"},
		{"id in two groups", "variations:\n  - {base: 1, ids: [2]}\n  - {base: 3, ids: [2]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
items:
  - {id: 10, name: Shark, placeholder: 11}
variations:
  - {base: 20, ids: [21, 22]}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Shark", c.Name(10))
	assert.Equal(t, 10, c.NonPlaceholderID(11))
	assert.Equal(t, 20, c.BaseID(22))
	assert.True(t, c.HasVariants(21))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
