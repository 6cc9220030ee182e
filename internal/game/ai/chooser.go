// Package ai implements enemy ability selection for the battle engine.
//
// Choosers only pick an ability; the engine resolves affordability and
// targets.
package ai

import (
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
)

// Chooser selects the ability an AI-controlled character uses on its turn.
type Chooser interface {
	Choose(actor *character.Character, src dice.Source) character.Ability
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(actor *character.Character, src dice.Source) character.Ability

// Choose calls f(actor, src).
func (f ChooserFunc) Choose(actor *character.Character, src dice.Source) character.Ability {
	return f(actor, src)
}

// RandomChooser picks uniformly among the actor's known abilities.
type RandomChooser struct{}

// Choose returns a uniformly random known ability, or the basic strike when
// the actor knows none.
//
// Precondition: actor and src must be non-nil.
func (RandomChooser) Choose(actor *character.Character, src dice.Source) character.Ability {
	if len(actor.Abilities) == 0 {
		return character.BasicStrike
	}
	return actor.Abilities[src.Intn(len(actor.Abilities))]
}
