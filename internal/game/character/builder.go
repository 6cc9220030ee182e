package character

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Template is a static stat block loaded from YAML from which battle-ready
// characters are built.
type Template struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Class   Class  `yaml:"class"`
	Level   int    `yaml:"level"`
	HP      int    `yaml:"hp"`
	MP      int    `yaml:"mp"`
	Attack  int    `yaml:"attack"`
	Defense int    `yaml:"defense"`
	Speed   int    `yaml:"speed"`
	Faith   int    `yaml:"faith"`
	// Abilities lists ability IDs resolved against the Registry.
	Abilities []string `yaml:"abilities"`
	// Instanced templates spawn with a unique ID suffix so several copies can
	// share one battle (minor spirits, storm servants).
	Instanced bool `yaml:"instanced"`
}

// Validate checks that the template satisfies its invariants.
//
// Precondition: t must not be nil.
// Postcondition: returns nil iff all fields are valid.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !t.Class.Valid() {
		errs = append(errs, fmt.Errorf("class must be one of protagonist, ally, hostile, obstacle; got %q", t.Class))
	}
	if t.Level < 1 {
		errs = append(errs, errors.New("level must be >= 1"))
	}
	if t.HP < 1 {
		errs = append(errs, errors.New("hp must be >= 1"))
	}
	if t.MP < 0 {
		errs = append(errs, errors.New("mp must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("character template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// Build constructs a fresh Character from t at full HP and MP.
//
// Precondition: every ability ID in t.Abilities must be present in abilities.
// Postcondition: Returns a Character with HP == MaxHP and MP == MaxMP, or an error.
func (t *Template) Build(abilities map[string]Ability) (*Character, error) {
	known := make([]Ability, 0, len(t.Abilities))
	for _, id := range t.Abilities {
		if id == BasicStrike.ID {
			known = append(known, BasicStrike)
			continue
		}
		a, ok := abilities[id]
		if !ok {
			return nil, fmt.Errorf("character template %q: unknown ability %q", t.ID, id)
		}
		known = append(known, a)
	}

	id := t.ID
	if t.Instanced {
		id = fmt.Sprintf("%s_%s", t.ID, uuid.NewString()[:instanceSuffixLen])
	}

	return &Character{
		ID:        id,
		Name:      t.Name,
		Title:     t.Title,
		Class:     t.Class,
		Level:     t.Level,
		HP:        t.HP,
		MaxHP:     t.HP,
		MP:        t.MP,
		MaxMP:     t.MP,
		Attack:    t.Attack,
		Defense:   t.Defense,
		Speed:     t.Speed,
		Faith:     t.Faith,
		Abilities: known,
	}, nil
}

// instanceSuffixLen is the number of hex digits Build appends to an
// instanced template's ID.
const instanceSuffixLen = 8

// TemplateID returns the template ID a character was built from: id with the
// "_<8 hex>" suffix of an instanced build removed, or id unchanged.
func TemplateID(id string) string {
	i := len(id) - instanceSuffixLen - 1
	if i < 1 || id[i] != '_' {
		return id
	}
	for _, r := range id[i+1:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return id
		}
	}
	return id[:i]
}

// validateAbility checks the invariants of a loaded ability definition.
func validateAbility(a *Ability) error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validElements[a.Element] {
		errs = append(errs, fmt.Errorf("unknown element %q", a.Element))
	}
	if a.Power < 0 {
		errs = append(errs, errors.New("power must be >= 0"))
	}
	if a.MPCost < 0 {
		errs = append(errs, errors.New("mp_cost must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// LoadAbilities reads every *.yaml and *.yml file under path (or path itself
// when it is a file), each holding a list of abilities.
//
// Precondition: path is a readable file or directory.
// Postcondition: returns all valid abilities or the first encountered error.
func LoadAbilities(path string) ([]Ability, error) {
	var out []Ability
	err := eachYAML(path, func(file string, data []byte) error {
		var list []Ability
		if err := yaml.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("LoadAbilities: cannot parse file %q: %w", file, err)
		}
		for i := range list {
			if err := validateAbility(&list[i]); err != nil {
				return fmt.Errorf("LoadAbilities: invalid ability in %q: %w", file, err)
			}
		}
		out = append(out, list...)
		return nil
	})
	return out, err
}

// LoadTemplates reads every *.yaml and *.yml file under path (or path itself
// when it is a file), each holding a list of character templates.
//
// Precondition: path is a readable file or directory.
// Postcondition: returns all valid templates or the first encountered error.
func LoadTemplates(path string) ([]*Template, error) {
	var out []*Template
	err := eachYAML(path, func(file string, data []byte) error {
		var list []*Template
		if err := yaml.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("LoadTemplates: cannot parse file %q: %w", file, err)
		}
		for _, t := range list {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("LoadTemplates: invalid template in %q: %w", file, err)
			}
		}
		out = append(out, list...)
		return nil
	})
	return out, err
}

func eachYAML(path string, fn func(file string, data []byte) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat %q: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("cannot read directory %q: %w", path, err)
		}
		files = files[:0]
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", f, err)
		}
		if err := fn(f, data); err != nil {
			return err
		}
	}
	return nil
}
