package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

// Record is the persistable form of a Session. Party members and items are
// stored by ID and rebuilt from the content registries on load.
type Record struct {
	Chapter           int              `yaml:"chapter"`
	Gold              int              `yaml:"gold"`
	ChaptersCompleted []int            `yaml:"chapters_completed,omitempty"`
	MapX              int              `yaml:"map_x"`
	MapY              int              `yaml:"map_y"`
	Party             []MemberRecord   `yaml:"party,omitempty"`
	Pool              []string         `yaml:"pool,omitempty"`
	Equipped          []EquippedRecord `yaml:"equipped,omitempty"`
	SavedAt           time.Time        `yaml:"saved_at"`
}

// MemberRecord is one party member's live state.
type MemberRecord struct {
	ID string `yaml:"id"`
	HP int    `yaml:"hp"`
	MP int    `yaml:"mp"`
}

// EquippedRecord is one occupied equipment slot.
type EquippedRecord struct {
	CharacterID string         `yaml:"character_id"`
	Slot        inventory.Slot `yaml:"slot"`
	ItemID      string         `yaml:"item_id"`
}

// Record captures the session's current state.
//
// Postcondition: Equipped is ordered by character ID then slot display order.
func (s *Session) Record() *Record {
	s.mu.RLock()
	rec := &Record{
		Chapter:           s.chapter,
		Gold:              s.gold,
		ChaptersCompleted: slices.Clone(s.chaptersCompleted),
		MapX:              s.mapX,
		MapY:              s.mapY,
		Party:             make([]MemberRecord, 0, len(s.party)),
	}
	for _, c := range s.party {
		rec.Party = append(rec.Party, MemberRecord{ID: c.ID, HP: c.HP, MP: c.MP})
	}
	s.mu.RUnlock()

	for _, it := range s.Ledger.Items() {
		rec.Pool = append(rec.Pool, it.ID)
	}
	for _, charID := range s.Ledger.CharacterIDs() {
		lo := s.Ledger.Loadout(charID)
		for _, slot := range inventory.Slots {
			if it := lo.Item(slot); it != nil {
				rec.Equipped = append(rec.Equipped, EquippedRecord{CharacterID: charID, Slot: slot, ItemID: it.ID})
			}
		}
	}
	return rec
}

// FromRecord rebuilds a Session from rec. Party members are built fresh from
// their templates and then given the recorded HP and MP, clamped to range.
//
// Precondition: rec, chars and items must not be nil.
// Postcondition: returns an error naming the first unknown template, item or slot.
func FromRecord(rec *Record, chars *character.Registry, items *inventory.Registry) (*Session, error) {
	s := New()
	if rec.Chapter > 0 {
		s.chapter = rec.Chapter
	}
	s.gold = rec.Gold
	s.chaptersCompleted = slices.Clone(rec.ChaptersCompleted)
	slices.Sort(s.chaptersCompleted)
	s.mapX, s.mapY = rec.MapX, rec.MapY

	for _, m := range rec.Party {
		c, err := chars.NewCharacter(m.ID)
		if err != nil {
			return nil, fmt.Errorf("session: FromRecord: %w", err)
		}
		c.HP = clamp(m.HP, 0, c.MaxHP)
		c.MP = clamp(m.MP, 0, c.MaxMP)
		s.party = append(s.party, c)
	}

	pool, err := items.Resolve(rec.Pool...)
	if err != nil {
		return nil, fmt.Errorf("session: FromRecord: %w", err)
	}
	for _, it := range pool {
		s.Ledger.AddItem(it)
	}

	loadouts := make(map[string]*inventory.Loadout)
	for _, eq := range rec.Equipped {
		it, ok := items.Item(eq.ItemID)
		if !ok {
			return nil, fmt.Errorf("session: FromRecord: unknown item %q", eq.ItemID)
		}
		if it.Slot != eq.Slot {
			return nil, fmt.Errorf("session: FromRecord: item %q does not fit slot %q", eq.ItemID, eq.Slot)
		}
		lo, ok := loadouts[eq.CharacterID]
		if !ok {
			lo = &inventory.Loadout{}
			loadouts[eq.CharacterID] = lo
		}
		if _, err := lo.Equip(it); err != nil {
			return nil, fmt.Errorf("session: FromRecord: %w", err)
		}
	}
	for charID, lo := range loadouts {
		s.Ledger.SetLoadout(charID, *lo)
	}
	return s, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
