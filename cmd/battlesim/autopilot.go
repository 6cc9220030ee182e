package main

import (
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
)

// woundedPercent is the HP share below which the autopilot heals.
const woundedPercent = 30

type moveKind int

const (
	moveAttack moveKind = iota
	moveAbility
	moveDefend
)

// move is one party action picked by the autopilot.
type move struct {
	kind      moveKind
	abilityID string
	targetID  string
}

// choose picks the current party member's action from a snapshot: heal when
// an ally is badly hurt, otherwise the strongest affordable attack against
// the weakest living enemy.
//
// Precondition: s.PlayerTurn is true.
func choose(s combat.Snapshot) move {
	var actor *character.Character
	for _, c := range s.Party {
		if c.ID == s.CurrentID {
			actor = c
			break
		}
	}
	if actor == nil {
		return move{kind: moveDefend}
	}

	if wounded := woundedAllies(s.Party); len(wounded) > 0 {
		if heal, ok := bestAbility(actor, true, len(wounded) > 1); ok {
			return move{kind: moveAbility, abilityID: heal.ID, targetID: weakest(wounded).ID}
		}
	}

	var foes []*character.Character
	for _, c := range s.Enemies {
		if c.IsAlive() {
			foes = append(foes, c)
		}
	}
	if len(foes) == 0 {
		return move{kind: moveDefend}
	}
	target := weakest(foes)
	if a, ok := bestAbility(actor, false, len(foes) > 1); ok && a.Power > character.BasicStrike.Power {
		return move{kind: moveAbility, abilityID: a.ID, targetID: target.ID}
	}
	return move{kind: moveAttack, targetID: target.ID}
}

func woundedAllies(party []*character.Character) []*character.Character {
	var out []*character.Character
	for _, c := range party {
		if c.IsAlive() && c.HP*100 < c.MaxHP*woundedPercent {
			out = append(out, c)
		}
	}
	return out
}

// bestAbility returns the highest-power affordable ability of the requested
// kind. When preferAll is set an all-target ability wins over a stronger
// single-target one.
func bestAbility(actor *character.Character, heals, preferAll bool) (character.Ability, bool) {
	var best character.Ability
	found := false
	for _, a := range actor.Abilities {
		if a.Heals != heals || a.MPCost > actor.MP || a.ID == character.BasicStrike.ID {
			continue
		}
		if !found || better(a, best, preferAll) {
			best, found = a, true
		}
	}
	return best, found
}

func better(a, b character.Ability, preferAll bool) bool {
	if preferAll && a.TargetsAll != b.TargetsAll {
		return a.TargetsAll
	}
	return a.Power > b.Power
}

// weakest returns the character with the lowest HP share; ties keep the first.
//
// Precondition: cs is non-empty.
func weakest(cs []*character.Character) *character.Character {
	w := cs[0]
	for _, c := range cs[1:] {
		if c.HP*w.MaxHP < w.HP*c.MaxHP {
			w = c
		}
	}
	return w
}
