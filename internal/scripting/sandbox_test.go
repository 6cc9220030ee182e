package scripting_test

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gospelrpg/internal/scripting"
)

// callChoose invokes choose_ability(actor, hp, max_hp, mp, ids) and returns
// the single value it produced.
func callChoose(L *lua.LState, ids ...string) (lua.LValue, error) {
	tbl := L.NewTable()
	for _, id := range ids {
		tbl.Append(lua.LString(id))
	}
	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("choose_ability"),
		NRet:    1,
		Protect: true,
	}, lua.LString("demon_1"), lua.LNumber(80), lua.LNumber(100), lua.LNumber(20), tbl)
	if err != nil {
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

func TestSandboxedState_ChooserCannotReachHost(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()

	require.NoError(t, L.DoString(`
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			if os ~= nil or io ~= nil or debug ~= nil then return "escaped" end
			if dofile ~= nil or loadfile ~= nil or load ~= nil then return "escaped" end
			if require ~= nil or collectgarbage ~= nil then return "escaped" end
			return ids[1]
		end
	`))
	got, err := callChoose(L, "dark_bolt", "shadow")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("dark_bolt"), got)
}

func TestSandboxedState_ChooserUsesSafeLibs(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()

	require.NoError(t, L.DoString(`
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			local i = math.floor(math.sqrt(#ids))
			local pick = ids[i]
			table.insert(ids, pick)
			return string.upper(ids[#ids])
		end
	`))
	got, err := callChoose(L, "dark_bolt", "shadow", "curse", "drain")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("SHADOW"), got)
}

func TestSandboxedState_RunawayChooserIsStopped(t *testing.T) {
	L := scripting.NewSandboxedState(50)
	require.NotNil(t, L)
	defer L.Close()

	require.NoError(t, L.DoString(`
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			while true do end
		end
	`))
	_, err := callChoose(L, "dark_bolt")
	assert.Error(t, err)
}

func TestRearm_RestoresBudgetForNextCall(t *testing.T) {
	// Each call runs roughly 300 opcodes: one fits in the budget, two do not.
	const limit = 500
	L := scripting.NewSandboxedState(limit)
	require.NotNil(t, L)
	defer L.Close()

	require.NoError(t, L.DoString(`
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			local n = 0
			for i = 1, 150 do n = n + i end
			return ids[1]
		end
	`))
	got, err := callChoose(L, "dark_bolt")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("dark_bolt"), got)

	_, err = callChoose(L, "dark_bolt")
	require.Error(t, err, "a spent budget must stop the next call")

	cancel := scripting.Rearm(L, limit)
	defer cancel()
	got, err = callChoose(L, "shadow")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("shadow"), got)
}

func TestRearm_CancelStopsTheState(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	require.NotNil(t, L)
	defer L.Close()

	require.NoError(t, L.DoString(`
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			return ids[1]
		end
	`))
	cancel := scripting.Rearm(L, 0)
	cancel()
	_, err := callChoose(L, "dark_bolt")
	assert.Error(t, err)
}

func TestRearm_ZeroUsesDefaultLimit(t *testing.T) {
	L := scripting.NewSandboxedState(10)
	require.NotNil(t, L)
	defer L.Close()

	cancel := scripting.Rearm(L, 0)
	defer cancel()
	// Far more opcodes than the construction limit, far fewer than the default.
	require.NoError(t, L.DoString(`
		local n = 0
		for i = 1, 1000 do n = n + i end
		function choose_ability(actor_id, hp, max_hp, mp, ids)
			return ids[#ids]
		end
	`))
	got, err := callChoose(L, "dark_bolt", "shadow")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("shadow"), got)

	cancel2 := scripting.Rearm(L, 0)
	defer cancel2()
	err = L.DoString(`
		local n = 0
		for i = 1, 1000000 do n = n + i end
	`)
	assert.Error(t, err, "the default budget still bounds a long loop")
}

func TestProperty_Rearm_EveryBudgetStopsRunawayChooser(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 200).Draw(t, "limit")
		L := scripting.NewSandboxedState(0)
		defer L.Close()
		if err := L.DoString(`
			function choose_ability(actor_id, hp, max_hp, mp, ids)
				while true do end
			end
		`); err != nil {
			t.Fatalf("load: %v", err)
		}
		cancel := scripting.Rearm(L, limit)
		defer cancel()
		if _, err := callChoose(L, "dark_bolt"); err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
