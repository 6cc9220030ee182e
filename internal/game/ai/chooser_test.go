package ai_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gospelrpg/internal/game/ai"
	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
	"github.com/cory-johannsen/gospelrpg/internal/scripting"
)

func demon(abilities ...character.Ability) *character.Character {
	return &character.Character{
		ID: "demon_1a2b3c4d", Name: "Demon", Class: character.ClassHostile,
		HP: 40, MaxHP: 40, MP: 10, MaxMP: 10, Abilities: abilities,
	}
}

var (
	darkBolt = character.Ability{ID: "dark_bolt", Name: "Dark Bolt", Power: 15, MPCost: 4, Element: character.ElementDarkness}
	shadow   = character.Ability{ID: "shadow", Name: "Shadow", Power: 10, MPCost: 6, TargetsAll: true, Element: character.ElementDarkness}
)

func TestRandomChooser_NoAbilities_ReturnsBasicStrike(t *testing.T) {
	got := ai.RandomChooser{}.Choose(demon(), dice.NewFixedSource(3))
	assert.Equal(t, character.BasicStrike, got)
}

func TestRandomChooser_UsesSourceIndex(t *testing.T) {
	c := demon(darkBolt, shadow)
	assert.Equal(t, darkBolt, ai.RandomChooser{}.Choose(c, dice.NewFixedSource(0)))
	assert.Equal(t, shadow, ai.RandomChooser{}.Choose(c, dice.NewFixedSource(1)))
}

func TestProperty_RandomChooser_AlwaysKnownAbility(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		var abilities []character.Ability
		for i := 0; i < n; i++ {
			abilities = append(abilities, character.Ability{ID: string(rune('a' + i)), Power: i})
		}
		c := demon(abilities...)
		got := ai.RandomChooser{}.Choose(c, dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")))
		_, known := c.Ability(got.ID)
		if !known {
			rt.Fatalf("chose unknown ability %q", got.ID)
		}
	})
}

type stubCaller struct {
	ret   lua.LValue
	err   error
	calls int
	args  []lua.LValue
}

func (s *stubCaller) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	s.calls++
	s.args = args
	return s.ret, s.err
}

func TestScriptChooser_KnownResult(t *testing.T) {
	caller := &stubCaller{ret: lua.LString("shadow")}
	sc := ai.NewScriptChooser(caller, nil, zap.NewNop())
	got := sc.Choose(demon(darkBolt, shadow), dice.NewFixedSource(0))
	assert.Equal(t, shadow, got)
	require.Len(t, caller.args, 5)
	assert.Equal(t, lua.LString("demon_1a2b3c4d"), caller.args[0])
	assert.Equal(t, lua.LNumber(40), caller.args[1])
}

func TestScriptChooser_FallsBack(t *testing.T) {
	fallback := ai.ChooserFunc(func(*character.Character, dice.Source) character.Ability { return darkBolt })
	cases := map[string]*stubCaller{
		"nil result":    {ret: lua.LNil},
		"number result": {ret: lua.LNumber(3)},
		"unknown id":    {ret: lua.LString("meteor")},
		"caller error":  {ret: lua.LNil, err: assert.AnError},
	}
	for name, caller := range cases {
		t.Run(name, func(t *testing.T) {
			sc := ai.NewScriptChooser(caller, fallback, nil)
			assert.Equal(t, darkBolt, sc.Choose(demon(darkBolt, shadow), dice.NewFixedSource(1)))
		})
	}
}

func TestScriptChooser_BasicStrikeAlwaysAccepted(t *testing.T) {
	sc := ai.NewScriptChooser(&stubCaller{ret: lua.LString("basic")}, nil, nil)
	assert.Equal(t, character.BasicStrike, sc.Choose(demon(darkBolt), dice.NewFixedSource(0)))
}

func TestNewScriptChooser_PanicsOnNilCaller(t *testing.T) {
	assert.Panics(t, func() { ai.NewScriptChooser(nil, nil, nil) })
}

func TestScriptChooser_WithLuaManager(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai.lua"), []byte(`
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			if hp * 2 < max_hp and mp >= 6 then
				return "shadow"
			end
			return ids[1]
		end
	`), 0644))
	mgr := scripting.NewManager(dice.NewSeededSource(1), zap.NewNop())
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.Load(dir, 0))

	sc := ai.NewScriptChooser(mgr, nil, zap.NewNop())
	c := demon(darkBolt, shadow)
	assert.Equal(t, darkBolt, sc.Choose(c, dice.NewFixedSource(0)))
	c.HP = 10
	assert.Equal(t, shadow, sc.Choose(c, dice.NewFixedSource(0)))
}

func TestRegistry_DispatchesByTemplate(t *testing.T) {
	always := func(a character.Ability) ai.Chooser {
		return ai.ChooserFunc(func(*character.Character, dice.Source) character.Ability { return a })
	}
	r := ai.NewRegistry(always(darkBolt))
	require.NoError(t, r.Register("demon", always(shadow)))
	require.Error(t, r.Register("demon", always(shadow)))

	assert.Equal(t, shadow, r.Choose(demon(), dice.NewFixedSource(0)))
	other := demon()
	other.ID = "wolf_00000000"
	assert.Equal(t, darkBolt, r.Choose(other, dice.NewFixedSource(0)))
	instance := demon()
	instance.ID = "demon_9f8e7d6c"
	assert.Equal(t, shadow, r.Choose(instance, dice.NewFixedSource(0)))
	named := demon()
	named.ID = "demon_wave"
	assert.Equal(t, darkBolt, r.Choose(named, dice.NewFixedSource(0)), "only an instance suffix resolves to the template")

	_, ok := r.ChooserFor("demon")
	assert.True(t, ok)
	_, ok = r.ChooserFor("nomatch")
	assert.False(t, ok)
}
