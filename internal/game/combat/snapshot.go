package combat

import "github.com/cory-johannsen/gospelrpg/internal/game/character"

// Snapshot is a point-in-time copy of a battle for read-only consumers.
// Mutating it does not affect the battle.
type Snapshot struct {
	ID        string
	State     string
	Outcome   Outcome
	Round     int
	Turns     int
	Party     []*character.Character
	Enemies   []*character.Character
	TurnOrder []string
	CurrentID string
	// PlayerTurn is true when the battle waits for a party action.
	PlayerTurn    bool
	Log           []string
	LastScripture string
}

// Snapshot returns a deep copy of the battle's observable state.
func (b *Battle) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Snapshot{
		ID:            b.id,
		State:         b.lc.Current(),
		Outcome:       b.outcome,
		Round:         b.round,
		Turns:         b.turns,
		Party:         cloneAll(b.party),
		Enemies:       cloneAll(b.enemies),
		TurnOrder:     make([]string, len(b.turnOrder)),
		Log:           b.log.Lines(),
		LastScripture: b.lastScripture,
	}
	for i, c := range b.turnOrder {
		s.TurnOrder[i] = c.ID
	}
	if b.current != nil {
		s.CurrentID = b.current.ID
		s.PlayerTurn = b.inProgressLocked() && b.current.Class.HumanControlled()
	}
	return s
}

// Living returns the IDs of living characters on the given side.
func (s Snapshot) Living(side Side) []string {
	roster := s.Party
	if side == SideEnemy {
		roster = s.Enemies
	}
	var ids []string
	for _, c := range roster {
		if c.IsAlive() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func cloneAll(cs []*character.Character) []*character.Character {
	out := make([]*character.Character, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}
