// Package session holds the explicit game session: the party, the item
// ledger and chapter progress, with conversion to and from a persistable
// Record.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/encounter"
	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

const (
	// StartMapX and StartMapY are the overworld coordinates of a new game.
	StartMapX = 5
	StartMapY = 5
)

// StarterParty lists the template IDs of the party a new game begins with.
var StarterParty = []string{"jesus", "simon"}

// StarterItems lists the item IDs placed in the pool of a new game.
var StarterItems = []string{"shepherd_staff", "rough_cloak", "leather_sandals", "bread", "bread", "fish"}

// starterEquipment is applied after StarterItems, in order.
var starterEquipment = []struct{ itemID, characterID string }{
	{"shepherd_staff", "jesus"},
	{"rough_cloak", "jesus"},
	{"leather_sandals", "simon"},
}

// ErrSessionNotFound is returned by a Repository when no session is stored
// under the requested slot.
var ErrSessionNotFound = errors.New("session not found")

// Session is one player's game in progress.
//
// The party slice and progress fields are guarded by the session lock; the
// Ledger carries its own lock. Characters handed to a battle are mutated by
// that battle and must not be touched through the Session until it ends.
type Session struct {
	mu                sync.RWMutex
	chapter           int
	gold              int
	chaptersCompleted []int
	mapX, mapY        int
	party             []*character.Character

	// Ledger owns the item pool and every party member's equipment.
	Ledger *inventory.Ledger
}

// New returns an empty session at chapter 1 with an empty ledger.
func New() *Session {
	return &Session{
		chapter: 1,
		mapX:    StartMapX,
		mapY:    StartMapY,
		Ledger:  inventory.NewLedger(),
	}
}

// NewGame builds the opening session: the starter party, the starter items
// in the pool and the starter equipment worn.
//
// Precondition: chars and items must not be nil.
// Postcondition: returns a session at chapter 1 or an error naming the first
// missing template or item.
func NewGame(chars *character.Registry, items *inventory.Registry) (*Session, error) {
	s := New()
	party, err := chars.NewRoster(StarterParty...)
	if err != nil {
		return nil, fmt.Errorf("session: NewGame: %w", err)
	}
	s.party = party

	starter, err := items.Resolve(StarterItems...)
	if err != nil {
		return nil, fmt.Errorf("session: NewGame: %w", err)
	}
	for _, it := range starter {
		s.Ledger.AddItem(it)
	}
	for _, eq := range starterEquipment {
		if _, err := s.Ledger.EquipFromPool(eq.itemID, eq.characterID); err != nil {
			return nil, fmt.Errorf("session: NewGame: equipping %q on %q: %w", eq.itemID, eq.characterID, err)
		}
	}
	return s, nil
}

// Chapter returns the chapter the party is currently on.
func (s *Session) Chapter() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chapter
}

// Gold returns the party's gold.
func (s *Session) Gold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gold
}

// AddGold adjusts gold by delta, flooring at zero.
func (s *Session) AddGold(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gold += delta
	if s.gold < 0 {
		s.gold = 0
	}
}

// ChaptersCompleted returns the completed chapter numbers in ascending order.
func (s *Session) ChaptersCompleted() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.chaptersCompleted)
}

// Position returns the overworld map coordinates.
func (s *Session) Position() (x, y int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapX, s.mapY
}

// MoveTo sets the overworld map coordinates.
func (s *Session) MoveTo(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapX, s.mapY = x, y
}

// Party returns the party members in join order. The returned slice is a
// copy; the characters are shared.
func (s *Session) Party() []*character.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.party)
}

// Member returns the party member with id.
func (s *Session) Member(id string) (*character.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.party {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Join appends c to the party unless a member with the same ID is present.
//
// Postcondition: returns true iff c was added.
func (s *Session) Join(c *character.Character) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.party {
		if m.ID == c.ID {
			return false
		}
	}
	s.party = append(s.party, c)
	return true
}

// RestoreParty fully restores every party member's HP and MP.
func (s *Session) RestoreParty() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.party {
		c.FullRestore()
	}
}

// Victory reports what a won encounter changed.
type Victory struct {
	Rewards   []string
	Recruited []string
	// Chapter is the chapter the party moves on to.
	Chapter int
}

// ApplyVictory restores the party, adds the encounter rewards to the pool,
// recruits the encounter's characters, marks the chapter complete and moves
// on to the next chapter.
//
// Precondition: enc, items and chars must not be nil.
// Postcondition: on error the session is unchanged.
func (s *Session) ApplyVictory(enc *encounter.Encounter, items *inventory.Registry, chars *character.Registry) (*Victory, error) {
	rewards, err := items.Resolve(enc.Rewards...)
	if err != nil {
		return nil, fmt.Errorf("session: ApplyVictory %q: %w", enc.ID, err)
	}
	var recruits []*character.Character
	for _, id := range enc.Recruits {
		if _, ok := s.Member(id); ok {
			continue
		}
		c, err := chars.NewCharacter(id)
		if err != nil {
			return nil, fmt.Errorf("session: ApplyVictory %q: %w", enc.ID, err)
		}
		recruits = append(recruits, c)
	}

	s.RestoreParty()
	v := &Victory{Rewards: slices.Clone(enc.Rewards)}
	for _, it := range rewards {
		s.Ledger.AddItem(it)
	}
	for _, c := range recruits {
		if s.Join(c) {
			v.Recruited = append(v.Recruited, c.ID)
		}
	}

	s.mu.Lock()
	if !slices.Contains(s.chaptersCompleted, enc.Chapter) {
		s.chaptersCompleted = append(s.chaptersCompleted, enc.Chapter)
		slices.Sort(s.chaptersCompleted)
	}
	if enc.Chapter >= s.chapter {
		s.chapter = enc.Chapter + 1
	}
	v.Chapter = s.chapter
	s.mu.Unlock()
	return v, nil
}

// ApplyDefeat restores the party so the encounter can be retried.
func (s *Session) ApplyDefeat() {
	s.RestoreParty()
}
