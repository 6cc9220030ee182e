package inventory

import "errors"

// ErrNotEquippable is returned when equipping an item that has no slot.
var ErrNotEquippable = errors.New("item has no equipment slot")

// Slot identifies one of the four fixed equipment positions.
type Slot string

const (
	// SlotWeapon holds a staff, rod, sling or sword.
	SlotWeapon Slot = "weapon"
	// SlotBody holds a cloak, robe or armor.
	SlotBody Slot = "body"
	// SlotFeet holds sandals.
	SlotFeet Slot = "feet"
	// SlotAccessory holds a seed, shield or shawl.
	SlotAccessory Slot = "accessory"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotWeapon, SlotBody, SlotFeet, SlotAccessory}

// slotDisplayNames maps every slot identifier to its human-readable label.
var slotDisplayNames = map[Slot]string{
	SlotWeapon:    "Weapon",
	SlotBody:      "Body",
	SlotFeet:      "Feet",
	SlotAccessory: "Accessory",
}

// Valid reports whether s is one of the four equipment slots.
func (s Slot) Valid() bool {
	_, ok := slotDisplayNames[s]
	return ok
}

// DisplayName returns the human-readable label for the slot.
func (s Slot) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	return string(s)
}

// Loadout holds the items equipped on one character.
// Invariant: each Slot holds at most one Item.
type Loadout struct {
	Weapon    *Item `yaml:"weapon,omitempty"`
	Body      *Item `yaml:"body,omitempty"`
	Feet      *Item `yaml:"feet,omitempty"`
	Accessory *Item `yaml:"accessory,omitempty"`
}

func (l *Loadout) slotRef(s Slot) **Item {
	switch s {
	case SlotWeapon:
		return &l.Weapon
	case SlotBody:
		return &l.Body
	case SlotFeet:
		return &l.Feet
	case SlotAccessory:
		return &l.Accessory
	default:
		return nil
	}
}

// Equip places item into its slot and returns whatever occupied it before.
//
// Precondition: item must not be nil.
// Postcondition: on success the item occupies item.Slot and the previous
// occupant (nil if empty) is returned; slotless items return ErrNotEquippable
// and leave the loadout unchanged.
func (l *Loadout) Equip(item *Item) (*Item, error) {
	ref := l.slotRef(item.Slot)
	if ref == nil {
		return nil, ErrNotEquippable
	}
	old := *ref
	*ref = item
	return old, nil
}

// Unequip empties slot s and returns the removed item, or nil if it was empty.
func (l *Loadout) Unequip(s Slot) *Item {
	ref := l.slotRef(s)
	if ref == nil {
		return nil
	}
	old := *ref
	*ref = nil
	return old
}

// Item returns the item equipped in slot s, or nil.
func (l *Loadout) Item(s Slot) *Item {
	ref := l.slotRef(s)
	if ref == nil {
		return nil
	}
	return *ref
}

// Equipped returns the non-empty slots' items in slot order.
func (l *Loadout) Equipped() []*Item {
	var out []*Item
	for _, it := range []*Item{l.Weapon, l.Body, l.Feet, l.Accessory} {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

func (l *Loadout) sum(field func(*Item) int) int {
	total := 0
	for _, it := range l.Equipped() {
		total += field(it)
	}
	return total
}

// TotalAttack sums AttackBonus across all equipped items.
func (l *Loadout) TotalAttack() int { return l.sum(func(i *Item) int { return i.AttackBonus }) }

// TotalDefense sums DefenseBonus across all equipped items.
func (l *Loadout) TotalDefense() int { return l.sum(func(i *Item) int { return i.DefenseBonus }) }

// TotalFaith sums FaithBonus across all equipped items.
func (l *Loadout) TotalFaith() int { return l.sum(func(i *Item) int { return i.FaithBonus }) }

// TotalHP sums HPBonus across all equipped items.
func (l *Loadout) TotalHP() int { return l.sum(func(i *Item) int { return i.HPBonus }) }

// TotalMP sums MPBonus across all equipped items.
func (l *Loadout) TotalMP() int { return l.sum(func(i *Item) int { return i.MPBonus }) }
