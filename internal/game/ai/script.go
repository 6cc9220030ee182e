package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
)

// ChooseHook is the Lua global called by ScriptChooser:
//
//	choose_ability(actor_id, hp, max_hp, mp, ability_ids) -> ability id or nil
const ChooseHook = "choose_ability"

// ScriptCaller is the interface required to evaluate Lua hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(hook string, args ...lua.LValue) (lua.LValue, error)
}

// ScriptChooser asks a Lua hook for the ability ID. A missing hook, a
// non-string result or an ID the actor does not know falls back to Fallback.
//
// Invariant: caller must not be nil.
type ScriptChooser struct {
	caller   ScriptCaller
	fallback Chooser
	logger   *zap.Logger
}

// NewScriptChooser constructs a ScriptChooser. A nil fallback means
// RandomChooser; a nil logger means no logging.
//
// Precondition: caller must not be nil.
func NewScriptChooser(caller ScriptCaller, fallback Chooser, logger *zap.Logger) *ScriptChooser {
	if caller == nil {
		panic("ai.NewScriptChooser: caller must not be nil")
	}
	if fallback == nil {
		fallback = RandomChooser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptChooser{caller: caller, fallback: fallback, logger: logger}
}

// Choose implements Chooser.
func (s *ScriptChooser) Choose(actor *character.Character, src dice.Source) character.Ability {
	ids := &lua.LTable{}
	for _, a := range actor.Abilities {
		ids.Append(lua.LString(a.ID))
	}
	ret, err := s.caller.CallHook(ChooseHook,
		lua.LString(actor.ID),
		lua.LNumber(actor.HP),
		lua.LNumber(actor.MaxHP),
		lua.LNumber(actor.MP),
		ids,
	)
	if err != nil {
		s.logger.Warn("ability script failed", zap.String("character_id", actor.ID), zap.Error(err))
		return s.fallback.Choose(actor, src)
	}
	id, ok := ret.(lua.LString)
	if !ok {
		return s.fallback.Choose(actor, src)
	}
	a, known := actor.Ability(string(id))
	if !known {
		s.logger.Warn("ability script returned unknown ability",
			zap.String("character_id", actor.ID),
			zap.String("ability_id", string(id)),
		)
		return s.fallback.Choose(actor, src)
	}
	return a
}
