package ai

import (
	"fmt"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
)

// Registry dispatches to a Chooser registered for the actor's template ID,
// falling back to a default Chooser. Instanced characters carry IDs of the
// form "<template>_<8 hex>" and resolve to their template's entry.
//
// Invariant: each template ID is registered at most once.
type Registry struct {
	choosers map[string]Chooser
	fallback Chooser
}

// NewRegistry returns an empty Registry. A nil fallback means RandomChooser.
func NewRegistry(fallback Chooser) *Registry {
	if fallback == nil {
		fallback = RandomChooser{}
	}
	return &Registry{choosers: make(map[string]Chooser), fallback: fallback}
}

// Register binds c to templateID.
//
// Precondition: c must not be nil.
// Postcondition: returns error on template ID collision.
func (r *Registry) Register(templateID string, c Chooser) error {
	if _, exists := r.choosers[templateID]; exists {
		return fmt.Errorf("ai.Registry: template %q already registered", templateID)
	}
	r.choosers[templateID] = c
	return nil
}

// ChooserFor returns the Chooser bound to the character ID, or false.
func (r *Registry) ChooserFor(characterID string) (Chooser, bool) {
	if c, ok := r.choosers[characterID]; ok {
		return c, true
	}
	if tid := character.TemplateID(characterID); tid != characterID {
		c, ok := r.choosers[tid]
		return c, ok
	}
	return nil, false
}

// Choose implements Chooser.
func (r *Registry) Choose(actor *character.Character, src dice.Source) character.Ability {
	if c, ok := r.ChooserFor(actor.ID); ok {
		return c.Choose(actor, src)
	}
	return r.fallback.Choose(actor, src)
}
