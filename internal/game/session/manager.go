package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
)

// Repository persists session Records by save slot.
type Repository interface {
	// Save writes rec under slot, replacing any previous record.
	Save(ctx context.Context, slot string, rec *Record) error
	// Load returns the record under slot, or ErrSessionNotFound.
	Load(ctx context.Context, slot string) (*Record, error)
	// Delete removes the record under slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error
}

// Manager tracks open sessions by save slot and moves them through a Repository.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	repo     Repository
	chars    *character.Registry
	items    *inventory.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a Manager with no open sessions. A nil logger means no logging.
//
// Precondition: repo, chars and items must not be nil.
func NewManager(repo Repository, chars *character.Registry, items *inventory.Registry, logger *zap.Logger) *Manager {
	if repo == nil {
		panic("session.NewManager: repo must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
		chars:    chars,
		items:    items,
		logger:   logger,
		now:      time.Now,
	}
}

// Open returns the session for slot: the already-open one, the stored one, or
// a new game when nothing is stored.
//
// Precondition: slot must be non-empty.
// Postcondition: on success the session is open under slot; created reports
// whether a new game was started.
func (m *Manager) Open(ctx context.Context, slot string) (s *Session, created bool, err error) {
	if slot == "" {
		return nil, false, errors.New("session: slot must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[slot]; ok {
		return s, false, nil
	}

	rec, err := m.repo.Load(ctx, slot)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s, err = NewGame(m.chars, m.items)
		if err != nil {
			return nil, false, err
		}
		created = true
		m.logger.Info("new game started", zap.String("slot", slot))
	case err != nil:
		return nil, false, fmt.Errorf("session: loading slot %q: %w", slot, err)
	default:
		s, err = FromRecord(rec, m.chars, m.items)
		if err != nil {
			return nil, false, fmt.Errorf("session: restoring slot %q: %w", slot, err)
		}
		m.logger.Info("session loaded",
			zap.String("slot", slot),
			zap.Int("chapter", s.Chapter()),
			zap.Int("party", len(s.Party())),
		)
	}
	m.sessions[slot] = s
	return s, created, nil
}

// Get returns the open session for slot.
func (m *Manager) Get(slot string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[slot]
	return s, ok
}

// Save writes the open session for slot to the repository.
//
// Postcondition: returns an error if slot is not open or the write fails.
func (m *Manager) Save(ctx context.Context, slot string) error {
	s, ok := m.Get(slot)
	if !ok {
		return fmt.Errorf("session: slot %q is not open", slot)
	}
	rec := s.Record()
	rec.SavedAt = m.now().UTC()
	if err := m.repo.Save(ctx, slot, rec); err != nil {
		return fmt.Errorf("session: saving slot %q: %w", slot, err)
	}
	m.logger.Debug("session saved", zap.String("slot", slot), zap.Int("chapter", rec.Chapter))
	return nil
}

// Close saves and forgets the open session for slot.
//
// Postcondition: on error the session stays open.
func (m *Manager) Close(ctx context.Context, slot string) error {
	if err := m.Save(ctx, slot); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, slot)
	m.mu.Unlock()
	return nil
}

// Reset deletes the stored record for slot and forgets any open session.
func (m *Manager) Reset(ctx context.Context, slot string) error {
	m.mu.Lock()
	delete(m.sessions, slot)
	m.mu.Unlock()
	if err := m.repo.Delete(ctx, slot); err != nil {
		return fmt.Errorf("session: deleting slot %q: %w", slot, err)
	}
	return nil
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
