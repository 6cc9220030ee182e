// Package combat implements the turn-based battle engine: turn order, action
// resolution, enemy AI turns, and victory/defeat detection.
package combat

import (
	"errors"
	"fmt"
)

// Rejected actions leave the battle untouched and do not consume the turn.
var (
	ErrBattleNotInProgress = errors.New("battle is not in progress")
	ErrAlreadyStarted      = errors.New("battle already started")
	ErrEmptyRoster         = errors.New("party and enemy rosters must both be non-empty")
	ErrNotYourTurn         = errors.New("it is not this character's turn")
	ErrNotHumanTurn        = errors.New("current turn is AI-controlled")
	ErrUnknownAbility      = errors.New("character does not know this ability")
	ErrInvalidTarget       = errors.New("invalid target")
	ErrInsufficientMP      = errors.New("not enough MP")
	ErrDuplicateID         = errors.New("two participants share an ID")
)

// Side identifies which roster a character belongs to.
type Side int

const (
	SideParty Side = iota
	SideEnemy
)

// Opponent returns the opposing side.
func (s Side) Opponent() Side {
	if s == SideParty {
		return SideEnemy
	}
	return SideParty
}

// Outcome is the battle result. It is decided once and never reverted.
type Outcome int

const (
	Ongoing Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Lifecycle states of a Battle.
const (
	StateNotStarted = "not_started"
	StateInProgress = "in_progress"
	StateVictory    = "victory"
	StateDefeat     = "defeat"
	StateAbandoned  = "abandoned"
)

// DefeatPolicy selects which party members must all fall for the battle to be lost.
type DefeatPolicy string

const (
	// DefeatAllParty loses only when every party member is dead.
	DefeatAllParty DefeatPolicy = "all_party"
	// DefeatExemptProtagonist loses when every non-protagonist party member is
	// dead, regardless of the protagonist. A party with no non-protagonist
	// members falls back to DefeatAllParty.
	DefeatExemptProtagonist DefeatPolicy = "exempt_protagonist"
)

// DefendPolicy selects how long the defend bonus lasts.
type DefendPolicy string

const (
	// DefendPersistent keeps the bonus on the character's Defense for good.
	DefendPersistent DefendPolicy = "persistent"
	// DefendUntilNextTurn removes the bonus when the defender's next turn
	// begins or the battle ends.
	DefendUntilNextTurn DefendPolicy = "until_next_turn"
)

// Policy holds the content-level rules a battle is configured with.
type Policy struct {
	Defeat DefeatPolicy
	Defend DefendPolicy
	// DefendBonus is the flat defense added by a defend action; 0 means 5.
	DefendBonus int
	// PermissiveTargets disables target validation: dead targets and
	// same-side damage targets are then accepted.
	PermissiveTargets bool
	// VarianceMinBP and VarianceMaxBP bound the damage variance in basis
	// points (10000 = 1.0); zero values mean 8500 and 11500.
	VarianceMinBP int
	VarianceMaxBP int
	// LogCapacity bounds the narration log; 0 keeps every line.
	LogCapacity int
}

// DefaultPolicy returns the default battle rules.
func DefaultPolicy() Policy {
	return Policy{
		Defeat:        DefeatAllParty,
		Defend:        DefendUntilNextTurn,
		DefendBonus:   5,
		VarianceMinBP: 8500,
		VarianceMaxBP: 11500,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Defeat == "" {
		p.Defeat = d.Defeat
	}
	if p.Defend == "" {
		p.Defend = d.Defend
	}
	if p.DefendBonus == 0 {
		p.DefendBonus = d.DefendBonus
	}
	if p.VarianceMinBP == 0 && p.VarianceMaxBP == 0 {
		p.VarianceMinBP, p.VarianceMaxBP = d.VarianceMinBP, d.VarianceMaxBP
	}
	return p
}

// Validate reports whether the policy values are usable.
func (p Policy) Validate() error {
	switch p.Defeat {
	case DefeatAllParty, DefeatExemptProtagonist, "":
	default:
		return fmt.Errorf("unknown defeat policy %q", p.Defeat)
	}
	switch p.Defend {
	case DefendPersistent, DefendUntilNextTurn, "":
	default:
		return fmt.Errorf("unknown defend policy %q", p.Defend)
	}
	if p.VarianceMinBP < 0 || p.VarianceMaxBP < p.VarianceMinBP {
		return fmt.Errorf("variance bounds [%d, %d] are invalid", p.VarianceMinBP, p.VarianceMaxBP)
	}
	if p.LogCapacity < 0 {
		return fmt.Errorf("log capacity must be >= 0, got %d", p.LogCapacity)
	}
	return nil
}

// Hit records one application of damage or healing.
type Hit struct {
	TargetID  string
	Amount    int
	Heal      bool
	EnemySide bool
}

// ActionResult describes a resolved action.
type ActionResult struct {
	ActorID   string
	AbilityID string
	Hits      []Hit
	// Outcome is the battle outcome after the action resolved.
	Outcome Outcome
}
