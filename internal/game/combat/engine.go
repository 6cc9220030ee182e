package combat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
)

// Engine manages all active battles, keyed by battle ID.
// All methods are safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	battles  map[string]*Battle
	defaults Options
}

// NewEngine creates an empty Engine. Every battle it starts is configured
// with defaults and a fresh ID.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(defaults Options) *Engine {
	if defaults.Logger == nil {
		defaults.Logger = zap.NewNop()
	}
	return &Engine{battles: make(map[string]*Battle), defaults: defaults}
}

// StartBattle creates, registers and starts a battle. The battle is visible
// through Battle before its first turn runs.
//
// Precondition: both rosters must be non-empty.
// Postcondition: Returns the running battle or an error; a failed battle is not registered.
func (e *Engine) StartBattle(party, enemies []*character.Character) (*Battle, error) {
	opts := e.defaults
	opts.ID = uuid.NewString()
	b, err := NewBattle(opts)
	if err != nil {
		return nil, fmt.Errorf("creating battle: %w", err)
	}

	e.mu.Lock()
	e.battles[b.ID()] = b
	e.mu.Unlock()

	if err := b.Start(party, enemies); err != nil {
		e.mu.Lock()
		delete(e.battles, b.ID())
		e.mu.Unlock()
		return nil, err
	}
	return b, nil
}

// Battle returns the battle with the given ID.
//
// Postcondition: Returns (battle, true) if found, or (nil, false) otherwise.
func (e *Engine) Battle(id string) (*Battle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.battles[id]
	return b, ok
}

// EndBattle abandons the battle if still running and removes it.
func (e *Engine) EndBattle(id string) {
	e.mu.Lock()
	b, ok := e.battles[id]
	delete(e.battles, id)
	e.mu.Unlock()
	if ok {
		b.Abandon()
	}
}

// Count returns the number of registered battles.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.battles)
}
