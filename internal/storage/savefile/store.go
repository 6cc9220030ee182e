// Package savefile persists game sessions as one YAML file per save slot.
package savefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gospelrpg/internal/game/session"
)

const ext = ".yaml"

var validSlot = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Store keeps session records under a directory as <slot>.yaml.
//
// Writes go to a temporary file in the same directory and are renamed into
// place, so a reader never observes a partial file.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating the directory if needed.
//
// Precondition: dir must be non-empty.
// Postcondition: returns an error if dir cannot be created.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("savefile: dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("savefile: creating %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(slot string) (string, error) {
	if !validSlot.MatchString(slot) {
		return "", fmt.Errorf("savefile: invalid slot name %q", slot)
	}
	return filepath.Join(s.dir, slot+ext), nil
}

// Save writes rec under slot, replacing any previous file.
//
// Postcondition: on error the previous file, if any, is intact.
func (s *Store) Save(ctx context.Context, slot string, rec *session.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("savefile: encoding slot %q: %w", slot, err)
	}

	tmp, err := os.CreateTemp(s.dir, slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("savefile: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("savefile: writing slot %q: %w", slot, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("savefile: syncing slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("savefile: closing slot %q: %w", slot, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("savefile: replacing slot %q: %w", slot, err)
	}
	return nil
}

// Load reads the record stored under slot.
//
// Postcondition: returns session.ErrSessionNotFound if no file exists for slot.
func (s *Store) Load(ctx context.Context, slot string) (*session.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("savefile: reading slot %q: %w", slot, err)
	}
	var rec session.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("savefile: parsing slot %q: %w", slot, err)
	}
	return &rec, nil
}

// Delete removes the file for slot. Deleting a missing slot is not an error.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("savefile: deleting slot %q: %w", slot, err)
	}
	return nil
}

// Slots returns the names of every stored slot in order.
func (s *Store) Slots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("savefile: listing %q: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ext))
	}
	sort.Strings(out)
	return out, nil
}
