// Package encounter defines the chapter battles: which enemies spawn, what
// the party earns on victory and who joins it afterwards.
package encounter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
)

// Encounter is a static battle definition loaded from YAML.
type Encounter struct {
	ID       string `yaml:"id"`
	Chapter  int    `yaml:"chapter"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Boss     string `yaml:"boss"`
	// Enemies lists character template IDs; repeats spawn several copies.
	Enemies []string `yaml:"enemies"`
	// Rewards lists item IDs added to the item pool on victory.
	Rewards []string `yaml:"rewards"`
	// Recruits lists character template IDs that join the party on victory.
	Recruits []string `yaml:"recruits"`
}

// Validate checks that the encounter satisfies its invariants.
//
// Precondition: e must not be nil.
// Postcondition: returns nil iff all fields are valid.
func (e *Encounter) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if e.Chapter < 1 {
		errs = append(errs, errors.New("chapter must be >= 1"))
	}
	if e.Title == "" {
		errs = append(errs, errors.New("title must not be empty"))
	}
	if len(e.Enemies) == 0 {
		errs = append(errs, errors.New("enemies must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("encounter %q: %w", e.ID, errors.Join(errs...))
	}
	return nil
}

// Spawn builds a fresh enemy roster for the encounter.
//
// Precondition: chars must not be nil.
// Postcondition: returns one full-HP Character per entry in Enemies, in order.
func (e *Encounter) Spawn(chars *character.Registry) ([]*character.Character, error) {
	roster, err := chars.NewRoster(e.Enemies...)
	if err != nil {
		return nil, fmt.Errorf("encounter %q: spawning enemies: %w", e.ID, err)
	}
	return roster, nil
}

// LoadEncounters reads every *.yaml and *.yml file under path (or path itself
// when it is a file), each holding a list of encounters.
//
// Precondition: path is a readable file or directory.
// Postcondition: returns all valid encounters or the first encountered error.
func LoadEncounters(path string) ([]*Encounter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("LoadEncounters: cannot stat %q: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("LoadEncounters: cannot read directory %q: %w", path, err)
		}
		files = files[:0]
		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}

	var out []*Encounter
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("LoadEncounters: cannot read file %q: %w", f, err)
		}
		var list []*Encounter
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("LoadEncounters: cannot parse file %q: %w", f, err)
		}
		for _, e := range list {
			if err := e.Validate(); err != nil {
				return nil, fmt.Errorf("LoadEncounters: invalid encounter in %q: %w", f, err)
			}
		}
		out = append(out, list...)
	}
	return out, nil
}

// Registry indexes encounters by ID and by chapter.
type Registry struct {
	byID      map[string]*Encounter
	byChapter map[int]*Encounter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:      make(map[string]*Encounter),
		byChapter: make(map[int]*Encounter),
	}
}

// LoadRegistry loads every encounter under path into a new Registry.
func LoadRegistry(path string) (*Registry, error) {
	list, err := LoadEncounters(path)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, e := range list {
		if err := reg.Register(e); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds e to the registry.
//
// Precondition: e must not be nil.
// Postcondition: returns error if e.ID or e.Chapter is already registered.
func (r *Registry) Register(e *Encounter) error {
	if _, exists := r.byID[e.ID]; exists {
		return fmt.Errorf("encounter: Registry.Register: encounter ID %q already registered", e.ID)
	}
	if prev, exists := r.byChapter[e.Chapter]; exists {
		return fmt.Errorf("encounter: Registry.Register: chapter %d already held by %q", e.Chapter, prev.ID)
	}
	r.byID[e.ID] = e
	r.byChapter[e.Chapter] = e
	return nil
}

// Encounter returns the encounter for id and whether it was found.
func (r *Registry) Encounter(id string) (*Encounter, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// ForChapter returns the encounter fought in chapter n.
func (r *Registry) ForChapter(n int) (*Encounter, bool) {
	e, ok := r.byChapter[n]
	return e, ok
}

// Chapters returns every registered chapter number in ascending order.
func (r *Registry) Chapters() []int {
	out := make([]int, 0, len(r.byChapter))
	for n := range r.byChapter {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Verify checks that every enemy and recruit names a known character template,
// that every reward names a known item, and that a template listed more than
// once in a roster is instanced so each copy gets its own ID.
//
// Postcondition: returns nil iff all references resolve and spawned IDs are unique.
func (r *Registry) Verify(chars *character.Registry, itemKnown func(id string) bool) error {
	var errs []error
	for _, n := range r.Chapters() {
		e := r.byChapter[n]
		counts := make(map[string]int, len(e.Enemies))
		for _, id := range e.Enemies {
			t, ok := chars.Template(id)
			if !ok {
				errs = append(errs, fmt.Errorf("encounter %q: unknown enemy template %q", e.ID, id))
				continue
			}
			counts[id]++
			if counts[id] == 2 && !t.Instanced {
				errs = append(errs, fmt.Errorf("encounter %q: enemy template %q appears more than once but is not instanced", e.ID, id))
			}
		}
		for _, id := range e.Recruits {
			if _, ok := chars.Template(id); !ok {
				errs = append(errs, fmt.Errorf("encounter %q: unknown recruit template %q", e.ID, id))
			}
		}
		for _, id := range e.Rewards {
			if !itemKnown(id) {
				errs = append(errs, fmt.Errorf("encounter %q: unknown reward item %q", e.ID, id))
			}
		}
	}
	return errors.Join(errs...)
}
