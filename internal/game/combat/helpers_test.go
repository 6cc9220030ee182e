package combat_test

import (
	"sync"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
)

func hero(id string, speed int) *character.Character {
	return &character.Character{
		ID: id, Name: id, Class: character.ClassProtagonist, Level: 1,
		HP: 100, MaxHP: 100, MP: 20, MaxMP: 20,
		Attack: 25, Defense: 10, Speed: speed, Faith: 10,
	}
}

func ally(id string, speed int) *character.Character {
	c := hero(id, speed)
	c.Class = character.ClassAlly
	return c
}

func foe(id string, speed int) *character.Character {
	return &character.Character{
		ID: id, Name: id, Class: character.ClassHostile, Level: 1,
		HP: 50, MaxHP: 50, MP: 0, MaxMP: 0,
		Attack: 15, Defense: 20, Speed: speed,
	}
}

var (
	smite = character.Ability{
		ID: "smite", Name: "Smite", Description: "Light breaks the darkness.",
		Element: character.ElementScripture, Power: 30, MPCost: 5, ScriptureRef: "John 1:5",
	}
	judgment = character.Ability{
		ID: "judgment", Name: "Judgment", Element: character.ElementFaith,
		Power: 30, MPCost: 8, TargetsAll: true,
	}
	mend = character.Ability{
		ID: "mend", Name: "Mend", Element: character.ElementLayingHands,
		Power: 20, MPCost: 3, Heals: true,
	}
	psalm = character.Ability{
		ID: "psalm", Name: "Psalm", Element: character.ElementPrayer,
		Power: 20, MPCost: 6, Heals: true, TargetsAll: true,
	}
)

// recordingScheduler keeps callbacks until the test runs them and ignores Cancel.
type recordingScheduler struct {
	mu  sync.Mutex
	fns []func()
}

type noopHandle struct{}

func (noopHandle) Cancel() {}

func (s *recordingScheduler) Schedule(_ int, fn func()) combat.Handle {
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
	return noopHandle{}
}

func (s *recordingScheduler) runAll() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type endRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (r *endRecorder) onEnd(victory bool) {
	r.mu.Lock()
	r.calls = append(r.calls, victory)
	r.mu.Unlock()
}

func (r *endRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
