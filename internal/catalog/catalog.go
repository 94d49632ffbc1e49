// Package catalog resolves item identities: names, placeholder twins, worn
// forms and variation groups. The tables come from a YAML file so the service
// does not need a live game client to answer these lookups.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/logging"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/catalog.yaml
var defaultCatalog []byte

var logger = logging.New("Catalog")

// File is the on-disk catalog format.
type File struct {
	Items            []ItemDef    `yaml:"items"`
	Canonical        map[int]int  `yaml:"canonical"`
	Variations       []Variation  `yaml:"variations"`
	TierFamilies     []TierFamily `yaml:"tier_families"`
	SubContainers    []int        `yaml:"sub_containers"`
	SubContainerEnum map[int]int  `yaml:"sub_container_enum"`
}

// ItemDef describes one item id.
type ItemDef struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Placeholder int    `yaml:"placeholder,omitempty"` // id of the placeholder twin
	Model       int    `yaml:"model,omitempty"`       // inventory model, selects a tier
}

// Variation groups interchangeable ids (charges, degradation) under one base.
type Variation struct {
	Base int   `yaml:"base"`
	IDs  []int `yaml:"ids"`
}

// TierFamily splits one variation group into tiers by inventory model.
type TierFamily struct {
	Base  int    `yaml:"base"`
	Tiers []Tier `yaml:"tiers"`
}

// Tier maps an inventory model to a group base. A zero Base means every id in
// the tier is its own base.
type Tier struct {
	Name  string `yaml:"name"`
	Model int    `yaml:"model"`
	Base  int    `yaml:"base"`
}

// Catalog answers identity lookups. It is immutable after construction.
type Catalog struct {
	names         map[int]string
	models        map[int]int
	placeholderOf map[int]int // real -> placeholder
	realOf        map[int]int // placeholder -> real
	canonical     map[int]int
	baseOf        map[int]int
	variations    map[int][]int
	tierFamilies  map[int]TierFamily
	subContainers mapset.Set[int]
	subEnum       map[int]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes a catalog from r.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return New(&f)
}

// New builds a catalog from decoded tables.
func New(f *File) (*Catalog, error) {
	c := &Catalog{
		names:         make(map[int]string, len(f.Items)),
		models:        make(map[int]int),
		placeholderOf: make(map[int]int),
		realOf:        make(map[int]int),
		canonical:     make(map[int]int, len(f.Canonical)),
		baseOf:        make(map[int]int),
		variations:    make(map[int][]int, len(f.Variations)),
		tierFamilies:  make(map[int]TierFamily, len(f.TierFamilies)),
		subContainers: mapset.New[int](),
		subEnum:       make(map[int]int, len(f.SubContainerEnum)),
	}

	for _, it := range f.Items {
		if it.ID <= 0 {
			return nil, fmt.Errorf("item %q: id must be positive", it.Name)
		}
		c.names[it.ID] = it.Name
		if it.Model != 0 {
			c.models[it.ID] = it.Model
		}
		if it.Placeholder > 0 {
			if it.Placeholder == it.ID {
				return nil, fmt.Errorf("item %d is its own placeholder", it.ID)
			}
			c.placeholderOf[it.ID] = it.Placeholder
			c.realOf[it.Placeholder] = it.ID
		}
	}

	for from, to := range f.Canonical {
		c.canonical[from] = to
	}

	for _, v := range f.Variations {
		ids := []int{v.Base}
		c.baseOf[v.Base] = v.Base
		for _, id := range v.IDs {
			if id == v.Base {
				continue
			}
			if other, ok := c.baseOf[id]; ok {
				return nil, fmt.Errorf("item %d is in variation groups %d and %d", id, other, v.Base)
			}
			c.baseOf[id] = v.Base
			ids = append(ids, id)
		}
		c.variations[v.Base] = ids
	}

	for _, fam := range f.TierFamilies {
		c.tierFamilies[fam.Base] = fam
	}

	for _, id := range f.SubContainers {
		for _, v := range c.Variations(c.BaseID(id)) {
			c.subContainers.Put(v)
		}
	}

	for value, itemID := range f.SubContainerEnum {
		c.subEnum[value] = itemID
	}

	return c, nil
}

// Name returns the display name of an item.
func (c *Catalog) Name(id int) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	if real, ok := c.realOf[id]; ok {
		if name, ok := c.names[real]; ok {
			return name
		}
	}
	return "Unknown item"
}

// Describe formats an id for logs, e.g. "Rune pouch (12791,ph)".
func (c *Catalog) Describe(id int) string {
	suffix := ""
	if c.IsPlaceholder(id) {
		suffix = ",ph"
	}
	return fmt.Sprintf("%s (%d%s)", c.Name(id), id, suffix)
}

// Canonicalize maps a worn or alternate form to its canonical id.
func (c *Catalog) Canonicalize(id int) int {
	if to, ok := c.canonical[id]; ok {
		return to
	}
	return id
}

// IsPlaceholder reports whether id is a placeholder twin.
func (c *Catalog) IsPlaceholder(id int) bool {
	_, ok := c.realOf[id]
	return ok
}

// NonPlaceholderID returns the real item for a placeholder, or id unchanged.
func (c *Catalog) NonPlaceholderID(id int) int {
	if real, ok := c.realOf[id]; ok {
		return real
	}
	return id
}

// SwitchPlaceholderID returns the placeholder for a real item and the real item
// for a placeholder, or -1 when id has no twin.
func (c *Catalog) SwitchPlaceholderID(id int) int {
	if real, ok := c.realOf[id]; ok {
		return real
	}
	if ph, ok := c.placeholderOf[id]; ok {
		return ph
	}
	return -1
}

// BaseID returns the variation group base of a non-placeholder id.
func (c *Catalog) BaseID(id int) int {
	if base, ok := c.baseOf[id]; ok {
		return base
	}
	return id
}

// Variations returns every id sharing base, or just base when it has no group.
func (c *Catalog) Variations(base int) []int {
	if ids, ok := c.variations[base]; ok {
		return ids
	}
	return []int{base}
}

// HasVariants reports whether a non-placeholder id belongs to a group of more
// than one id.
func (c *Catalog) HasVariants(id int) bool {
	return len(c.Variations(c.BaseID(id))) > 1
}

// VariationBaseID groups ids for layout matching. It is BaseID except inside a
// tier family, where the item's inventory model picks the tier.
func (c *Catalog) VariationBaseID(id int) int {
	base := c.BaseID(id)
	fam, ok := c.tierFamilies[base]
	if !ok {
		return base
	}

	model := c.models[id]
	for _, tier := range fam.Tiers {
		if tier.Model != model {
			continue
		}
		if tier.Base == 0 {
			return id
		}
		return tier.Base
	}
	return base
}

// HasSubContainer reports whether the inventory holds a sub-container item.
func (c *Catalog) HasSubContainer(inventory []int) bool {
	for _, id := range inventory {
		if c.subContainers.Has(id) {
			return true
		}
	}
	return false
}

// SubContainerContents resolves sub-container slots to item ids. Slots with no
// amount are skipped.
func (c *Catalog) SubContainerContents(slots []models.SubContainerSlot) []int {
	items := make([]int, 0, len(slots))
	for _, slot := range slots {
		if slot.Amount <= 0 {
			continue
		}
		itemID, ok := c.subEnum[slot.Rune]
		if !ok {
			logger.Debugf("unknown sub-container rune %d", slot.Rune)
			continue
		}
		items = append(items, itemID)
	}
	return items
}
