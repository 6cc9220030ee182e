package character

import (
	"fmt"
	"sort"
)

// Registry indexes ability definitions and character templates by ID.
//
// Invariant: each ability ID and template ID is registered at most once.
type Registry struct {
	abilities map[string]Ability
	templates map[string]*Template
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		abilities: make(map[string]Ability),
		templates: make(map[string]*Template),
	}
}

// RegisterAbility adds a to the registry.
//
// Postcondition: returns error if a.ID is already registered.
func (r *Registry) RegisterAbility(a Ability) error {
	if _, exists := r.abilities[a.ID]; exists {
		return fmt.Errorf("character: Registry.RegisterAbility: ability ID %q already registered", a.ID)
	}
	r.abilities[a.ID] = a
	return nil
}

// RegisterTemplate adds t to the registry.
//
// Precondition: t must not be nil.
// Postcondition: returns error if t.ID is already registered.
func (r *Registry) RegisterTemplate(t *Template) error {
	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("character: Registry.RegisterTemplate: template ID %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

// Ability returns the ability for id and whether it was found.
func (r *Registry) Ability(id string) (Ability, bool) {
	if id == BasicStrike.ID {
		return BasicStrike, true
	}
	a, ok := r.abilities[id]
	return a, ok
}

// Template returns the template for id and whether it was found.
func (r *Registry) Template(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// TemplateIDs returns all registered template IDs in sorted order.
func (r *Registry) TemplateIDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewCharacter builds a fresh Character from the template with the given ID.
//
// Postcondition: Returns a full-HP Character or an error if the template or
// one of its abilities is unknown.
func (r *Registry) NewCharacter(templateID string) (*Character, error) {
	t, ok := r.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("character: unknown template %q", templateID)
	}
	return t.Build(r.abilities)
}

// NewRoster builds one fresh Character per template ID, preserving order.
func (r *Registry) NewRoster(templateIDs ...string) ([]*Character, error) {
	out := make([]*Character, 0, len(templateIDs))
	for _, id := range templateIDs {
		c, err := r.NewCharacter(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadRegistry loads abilities from abilitiesPath and templates from
// templatesPath into a new Registry, verifying every template builds.
func LoadRegistry(abilitiesPath, templatesPath string) (*Registry, error) {
	abilities, err := LoadAbilities(abilitiesPath)
	if err != nil {
		return nil, err
	}
	templates, err := LoadTemplates(templatesPath)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, a := range abilities {
		if err := reg.RegisterAbility(a); err != nil {
			return nil, err
		}
	}
	for _, t := range templates {
		if err := reg.RegisterTemplate(t); err != nil {
			return nil, err
		}
		if _, err := t.Build(reg.abilities); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
