package inventory

import (
	"errors"
	"sort"
	"sync"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
)

var (
	// ErrItemNotInPool is returned when an item ID is not in the general pool.
	ErrItemNotInPool = errors.New("item not in inventory")
	// ErrNotConsumable is returned when using an item that does not heal.
	ErrNotConsumable = errors.New("item is not a consumable")
)

// Ledger owns the party's general item pool and the per-character equipment
// loadouts, keyed by character ID. It is independent of Character so
// equipment can change without touching combat stats; the battle engine
// queries it live at damage-calculation time.
//
// All methods are safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	pool     []*Item
	loadouts map[string]*Loadout
}

// NewLedger returns an empty Ledger.
//
// Postcondition: pool and loadouts are empty.
func NewLedger() *Ledger {
	return &Ledger{loadouts: make(map[string]*Loadout)}
}

// AddItem appends item to the general pool. Duplicates are allowed.
//
// Precondition: item must not be nil.
func (l *Ledger) AddItem(item *Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool = append(l.pool, item)
}

// RemoveItem removes the first pool entry with itemID.
//
// Postcondition: returns the removed item and true, or nil and false if absent.
func (l *Ledger) RemoveItem(itemID string) (*Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeLocked(itemID)
}

func (l *Ledger) removeLocked(itemID string) (*Item, bool) {
	for i, it := range l.pool {
		if it.ID == itemID {
			l.pool = append(l.pool[:i], l.pool[i+1:]...)
			return it, true
		}
	}
	return nil, false
}

// Items returns a copy of the general pool in insertion order.
func (l *Ledger) Items() []*Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Item, len(l.pool))
	copy(out, l.pool)
	return out
}

// Count returns how many copies of itemID are in the pool.
func (l *Ledger) Count(itemID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, it := range l.pool {
		if it.ID == itemID {
			n++
		}
	}
	return n
}

// Equip swaps item into its slot on characterID's loadout and returns the
// previous occupant. The pool is not touched; the caller is responsible for
// returning the displaced item to it.
//
// Precondition: item must not be nil.
// Postcondition: slotless items return ErrNotEquippable with no state change.
func (l *Ledger) Equip(item *Item, characterID string) (*Item, error) {
	if !item.Equippable() {
		return nil, ErrNotEquippable
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadoutLocked(characterID).Equip(item)
}

// EquipFromPool moves the first pool copy of itemID onto characterID and
// returns the displaced item to the pool.
//
// Postcondition: on error the pool and loadout are unchanged.
func (l *Ledger) EquipFromPool(itemID, characterID string) (*Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var item *Item
	for _, it := range l.pool {
		if it.ID == itemID {
			item = it
			break
		}
	}
	if item == nil {
		return nil, ErrItemNotInPool
	}
	if !item.Equippable() {
		return nil, ErrNotEquippable
	}
	l.removeLocked(itemID)
	old, err := l.loadoutLocked(characterID).Equip(item)
	if err != nil {
		return nil, err
	}
	if old != nil {
		l.pool = append(l.pool, old)
	}
	return old, nil
}

// Unequip empties slot s on characterID and returns the removed item to the pool.
func (l *Ledger) Unequip(characterID string, s Slot) *Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	lo, ok := l.loadouts[characterID]
	if !ok {
		return nil
	}
	old := lo.Unequip(s)
	if old != nil {
		l.pool = append(l.pool, old)
	}
	return old
}

// UseConsumable removes one copy of itemID from the pool and heals c by its
// HealAmount.
//
// Precondition: c must not be nil.
// Postcondition: on error neither the pool nor c is changed.
func (l *Ledger) UseConsumable(itemID string, c *character.Character) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var item *Item
	for _, it := range l.pool {
		if it.ID == itemID {
			item = it
			break
		}
	}
	if item == nil {
		return ErrItemNotInPool
	}
	if !item.Consumable() {
		return ErrNotConsumable
	}
	l.removeLocked(itemID)
	c.Heal(item.HealAmount)
	return nil
}

// Loadout returns a copy of characterID's loadout; empty if none exists.
func (l *Ledger) Loadout(characterID string) Loadout {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if lo, ok := l.loadouts[characterID]; ok {
		return *lo
	}
	return Loadout{}
}

// SetLoadout replaces characterID's loadout. Used when restoring a saved session.
func (l *Ledger) SetLoadout(characterID string, lo Loadout) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := lo
	l.loadouts[characterID] = &cp
}

// CharacterIDs returns the IDs with a loadout entry, sorted.
func (l *Ledger) CharacterIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.loadouts))
	for id := range l.loadouts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (l *Ledger) loadoutLocked(characterID string) *Loadout {
	lo, ok := l.loadouts[characterID]
	if !ok {
		lo = &Loadout{}
		l.loadouts[characterID] = lo
	}
	return lo
}

func (l *Ledger) total(characterID string, f func(*Loadout) int) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lo, ok := l.loadouts[characterID]
	if !ok {
		return 0
	}
	return f(lo)
}

// TotalAttack returns the summed equipment attack bonus for characterID.
func (l *Ledger) TotalAttack(characterID string) int {
	return l.total(characterID, (*Loadout).TotalAttack)
}

// TotalDefense returns the summed equipment defense bonus for characterID.
func (l *Ledger) TotalDefense(characterID string) int {
	return l.total(characterID, (*Loadout).TotalDefense)
}

// TotalFaith returns the summed equipment faith bonus for characterID.
func (l *Ledger) TotalFaith(characterID string) int {
	return l.total(characterID, (*Loadout).TotalFaith)
}

// TotalHP returns the summed equipment HP bonus for characterID.
func (l *Ledger) TotalHP(characterID string) int {
	return l.total(characterID, (*Loadout).TotalHP)
}

// TotalMP returns the summed equipment MP bonus for characterID.
func (l *Ledger) TotalMP(characterID string) int {
	return l.total(characterID, (*Loadout).TotalMP)
}
