package main

import (
	"fmt"

	"github.com/cory-johannsen/gospelrpg/internal/config"
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/encounter"
	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

// library holds every content registry the simulator needs.
type library struct {
	chars      *character.Registry
	items      *inventory.Registry
	encounters *encounter.Registry
}

// loadLibrary loads abilities, templates, items and encounters and verifies
// that every cross-reference resolves.
func loadLibrary(cfg config.ContentConfig) (*library, error) {
	chars := character.NewRegistry()
	abilities, err := character.LoadAbilities(cfg.Abilities)
	if err != nil {
		return nil, err
	}
	for _, a := range abilities {
		if err := chars.RegisterAbility(a); err != nil {
			return nil, err
		}
	}
	templates, err := character.LoadTemplates(cfg.Characters)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if err := chars.RegisterTemplate(t); err != nil {
			return nil, err
		}
	}

	items, err := inventory.LoadRegistry(cfg.Items)
	if err != nil {
		return nil, err
	}
	encounters, err := encounter.LoadRegistry(cfg.Encounters)
	if err != nil {
		return nil, err
	}
	if err := encounters.Verify(chars, func(id string) bool {
		_, ok := items.Item(id)
		return ok
	}); err != nil {
		return nil, fmt.Errorf("verifying encounters: %w", err)
	}
	return &library{chars: chars, items: items, encounters: encounters}, nil
}

// bossTemplates returns the template ID leading each chapter's enemy roster,
// without repeats, in chapter order.
func (l *library) bossTemplates() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range l.encounters.Chapters() {
		e, _ := l.encounters.ForChapter(n)
		if id := e.Enemies[0]; !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
