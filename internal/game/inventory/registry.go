package inventory

import (
	"fmt"
	"sort"
)

// Registry holds all loaded item definitions indexed by ID.
type Registry struct {
	items map[string]*Item
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*Item)}
}

// LoadRegistry loads every item definition under path into a new Registry.
func LoadRegistry(path string) (*Registry, error) {
	items, err := LoadItems(path)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, it := range items {
		if err := reg.RegisterItem(it); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *Item) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the Item for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*Item, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Resolve looks up every id in order; duplicates yield repeated entries.
//
// Postcondition: returns an error naming the first unknown id.
func (r *Registry) Resolve(ids ...string) ([]*Item, error) {
	out := make([]*Item, 0, len(ids))
	for _, id := range ids {
		d, ok := r.items[id]
		if !ok {
			return nil, fmt.Errorf("inventory: unknown item %q", id)
		}
		out = append(out, d)
	}
	return out, nil
}

// IDs returns all registered item IDs sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
