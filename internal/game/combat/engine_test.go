package combat_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
)

func TestEngine_StartLookupEnd(t *testing.T) {
	e := combat.NewEngine(combat.Options{Scheduler: combat.NewTickScheduler(), Source: dice.NewFixedSource(1500)})
	b, err := e.StartBattle(roster(hero("peter", 10)), roster(foe("demon", 1)))
	require.NoError(t, err)
	_, err = uuid.Parse(b.ID())
	assert.NoError(t, err)
	assert.Equal(t, 1, e.Count())

	got, ok := e.Battle(b.ID())
	require.True(t, ok)
	assert.Same(t, b, got)

	e.EndBattle(b.ID())
	assert.Equal(t, 0, e.Count())
	assert.Equal(t, combat.StateAbandoned, b.State())
	_, ok = e.Battle(b.ID())
	assert.False(t, ok)

	// Ending an unknown battle is a no-op.
	e.EndBattle("missing")
}

func TestEngine_FailedStartNotRegistered(t *testing.T) {
	e := combat.NewEngine(combat.Options{})
	_, err := e.StartBattle(nil, roster(foe("demon", 1)))
	assert.ErrorIs(t, err, combat.ErrEmptyRoster)
	assert.Equal(t, 0, e.Count())
}

func TestEngine_ConcurrentBattlesAreIndependent(t *testing.T) {
	e := combat.NewEngine(combat.Options{})
	const n = 20
	var wg sync.WaitGroup
	ids := make([]string, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			b, err := e.StartBattle(roster(hero("peter", 10)), roster(foe("demon", 1)))
			if assert.NoError(t, err) {
				ids[i] = b.ID()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, e.Count())

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate battle id %s", id)
		seen[id] = true
	}
}

func TestEngine_ConcludedBattleStaysUntilEnded(t *testing.T) {
	e := combat.NewEngine(combat.Options{})
	d := foe("demon", 1)
	d.HP = 1
	b, err := e.StartBattle(roster(hero("peter", 10)), roster(d))
	require.NoError(t, err)
	_, err = b.Attack("peter", "demon")
	require.NoError(t, err)
	assert.Equal(t, combat.Victory, b.Outcome())
	assert.Equal(t, 1, e.Count())

	e.EndBattle(b.ID())
	assert.Equal(t, combat.StateVictory, b.State())
}
