package testutil

import (
	"strings"
	"sync"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/catalog"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
)

// FixtureCatalogYAML is a small catalog for handler and session tests:
//   - 100, 101, 102 are variations of base 100; 9100 is the placeholder of 100
//   - 200 has placeholder 9200 and no variations
//   - 300 is the rune pouch; rune slot 1 holds 301, slot 2 holds 302
//   - 401 is worn as 400
const FixtureCatalogYAML = `
items:
  - {id: 100, name: Glory, placeholder: 9100}
  - {id: 101, name: Glory(1)}
  - {id: 102, name: Glory(2)}
  - {id: 200, name: Shark, placeholder: 9200}
  - {id: 300, name: Rune pouch}
  - {id: 301, name: Air rune}
  - {id: 302, name: Fire rune}
  - {id: 400, name: Graceful hood}
canonical:
  401: 400
variations:
  - {base: 100, ids: [100, 101, 102]}
sub_containers: [300]
sub_container_enum:
  1: 301
  2: 302
`

// NewCatalog parses FixtureCatalogYAML. It panics if the fixture is broken.
func NewCatalog() *catalog.Catalog {
	c, err := catalog.Parse(strings.NewReader(FixtureCatalogYAML))
	if err != nil {
		panic("testutil: fixture catalog: " + err.Error())
	}
	return c
}

// RecordingPublisher collects published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *RecordingPublisher) Publish(event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Last returns the most recent event and whether there was one.
func (p *RecordingPublisher) Last() (models.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return models.Event{}, false
	}
	return p.events[len(p.events)-1], true
}
