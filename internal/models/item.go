package models

// ItemInstance is one live item as the player currently sees it.
type ItemInstance struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}

// FakeItem is a render entry for a layout slot with no live instance. Quantity
// is -1 when no live instance informs it.
type FakeItem struct {
	Index             int  `json:"index"`
	ItemID            int  `json:"itemId"`
	LayoutPlaceholder bool `json:"isLayoutPlaceholder"`
	Quantity          int  `json:"quantity"`
}

// SubContainerSlot is one rune pouch slot.
type SubContainerSlot struct {
	Rune   int `json:"rune"`
	Amount int `json:"amount"`
}

// Snapshot is the item state an auto layout is generated from. Empty slots
// are -1.
type Snapshot struct {
	Equipped     []int              `json:"equipped"`
	Inventory    []int              `json:"inventory"`
	SubContainer []SubContainerSlot `json:"subContainer,omitempty"`
	Extra        []int              `json:"extra,omitempty"`
}

// HasItems reports whether any equipped or inventory slot holds an item.
func (s *Snapshot) HasItems() bool {
	for _, id := range s.Equipped {
		if id > 0 {
			return true
		}
	}
	for _, id := range s.Inventory {
		if id > 0 {
			return true
		}
	}
	return false
}
