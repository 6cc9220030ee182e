package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Item is a static item definition loaded from YAML. Items with an empty
// Slot are consumables.
type Item struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	ScriptureRef string `yaml:"scripture_ref"`
	Slot         Slot   `yaml:"slot"`
	AttackBonus  int    `yaml:"attack_bonus"`
	DefenseBonus int    `yaml:"defense_bonus"`
	FaithBonus   int    `yaml:"faith_bonus"`
	HPBonus      int    `yaml:"hp_bonus"`
	MPBonus      int    `yaml:"mp_bonus"`
	// HealAmount > 0 marks a healing consumable.
	HealAmount int    `yaml:"heal_amount"`
	Icon       string `yaml:"icon"`
}

// Equippable reports whether the item occupies an equipment slot.
func (i *Item) Equippable() bool { return i.Slot != "" }

// Consumable reports whether the item can be used up to heal a character.
func (i *Item) Consumable() bool { return i.Slot == "" && i.HealAmount > 0 }

// Validate checks that the Item satisfies its invariants.
//
// Precondition: i is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (i *Item) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if i.Slot != "" && !i.Slot.Valid() {
		errs = append(errs, fmt.Errorf("Slot must be one of weapon, body, feet, accessory or empty; got %q", i.Slot))
	}
	if i.HealAmount < 0 {
		errs = append(errs, errors.New("HealAmount must be >= 0"))
	}
	if i.Slot != "" && i.HealAmount > 0 {
		errs = append(errs, errors.New("HealAmount is only valid on consumables"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from path (or path itself when
// it is a file), parses each as a list of Items, validates them, and returns
// the collected slice.
//
// Precondition: path is a readable file or directory.
// Postcondition: returns all valid Items or the first encountered error.
func LoadItems(path string) ([]*Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot stat %q: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", path, err)
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

	var items []*Item
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", file, err)
		}
		var list []*Item
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", file, err)
		}
		for _, it := range list {
			if err := it.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item %q in %q: %w", it.ID, file, err)
			}
		}
		items = append(items, list...)
	}
	return items, nil
}
