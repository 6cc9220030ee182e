package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gospelrpg/internal/game/ai"
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
	"github.com/cory-johannsen/gospelrpg/internal/scripting"
)

func legion(hp int) *character.Character {
	ab := func(id string) character.Ability {
		return character.Ability{ID: id, Name: id, Element: character.ElementDarkness, Power: 20}
	}
	return &character.Character{
		ID: "legion", Name: "Legion", Class: character.ClassHostile,
		HP: hp, MaxHP: 400, MP: 99, MaxMP: 99,
		Abilities: []character.Ability{ab("legion_swarm"), ab("torment"), ab("possession"), ab("dark_cry")},
	}
}

func shippedChooser(t *testing.T, src dice.Source) *ai.ScriptChooser {
	t.Helper()
	mgr := scripting.NewManager(src, zap.NewNop())
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.Load("../../../content/scripts/ai", scripting.DefaultInstructionLimit))
	return ai.NewScriptChooser(mgr, nil, nil)
}

func TestShippedScript_PicksTheDrawnIndex(t *testing.T) {
	// engine.random(4) draws v % 4 + 1
	for _, hp := range []int{400, 100, 1} {
		src := dice.NewFixedSource(0, 1, 2, 3)
		chooser := shippedChooser(t, src)
		boss := legion(hp)
		for i, want := range boss.Abilities {
			assert.Equal(t, want.ID, chooser.Choose(boss, src).ID, "hp %d draw %d", hp, i)
		}
	}
}

func TestShippedScript_WoundedBossStaysUniform(t *testing.T) {
	src := dice.NewSeededSource(42)
	chooser := shippedChooser(t, src)
	boss := legion(100)

	const draws = 8000
	counts := make(map[string]int)
	for range draws {
		counts[chooser.Choose(boss, src).ID]++
	}
	require.Len(t, counts, len(boss.Abilities))
	expected := draws / len(boss.Abilities)
	for id, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)/10, "ability %q drawn %d times", id, n)
	}
}

func TestProperty_ShippedScript_IgnoresHealth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.IntRange(0, 1000).Draw(rt, "draw")
		hp := rapid.IntRange(1, 400).Draw(rt, "hp")
		src := dice.NewFixedSource(v)
		mgr := scripting.NewManager(src, zap.NewNop())
		defer mgr.Close()
		if err := mgr.Load("../../../content/scripts/ai", scripting.DefaultInstructionLimit); err != nil {
			rt.Fatalf("loading scripts: %v", err)
		}
		boss := legion(hp)
		got := ai.NewScriptChooser(mgr, nil, nil).Choose(boss, src)
		if want := boss.Abilities[v%len(boss.Abilities)]; got.ID != want.ID {
			rt.Fatalf("hp %d draw %d: got %q, want %q", hp, v, got.ID, want.ID)
		}
	})
}

func TestShippedScript_MinionPicksFromList(t *testing.T) {
	src := dice.NewFixedSource(0)
	minion := demon(darkBolt, shadow)
	got := shippedChooser(t, src).Choose(minion, src)
	assert.Equal(t, darkBolt, got)
}
