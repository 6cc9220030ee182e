package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
)

// resolveAITurn runs a scheduled enemy turn. It does nothing when the battle
// moved on since it was scheduled.
func (b *Battle) resolveAITurn(gen uint64) {
	b.mu.Lock()
	if gen != b.generation || !b.inProgressLocked() || b.current == nil {
		b.mu.Unlock()
		b.logger.Debug("stale AI turn ignored", zap.Uint64("generation", gen))
		return
	}
	b.pending = nil
	actor := b.current
	if actor.Class.HumanControlled() {
		b.mu.Unlock()
		return
	}
	if actor.IsAlive() {
		b.enemyTurnLocked(actor)
		b.checkEndLocked()
	}
	b.nextTurnLocked()
	b.mu.Unlock()
	b.finish()
}

// enemyTurnLocked picks and applies an ability for an AI-controlled actor.
// An unaffordable choice falls back to the basic strike.
func (b *Battle) enemyTurnLocked(actor *character.Character) {
	own := b.side[actor]
	opponents := living(b.roster(own.Opponent()))
	if len(opponents) == 0 {
		return
	}
	ability := b.opts.Chooser.Choose(actor, b.opts.Source)
	if !actor.UseMP(ability.MPCost) {
		b.logger.Debug("AI ability unaffordable, using basic strike",
			zap.String("character_id", actor.ID),
			zap.String("ability_id", ability.ID),
		)
		ability = character.BasicStrike
	}
	if ability.HasScripture() {
		b.lastScripture = fmt.Sprintf("%s: %s", ability.ScriptureRef, ability.Description)
	}

	pool := opponents
	if ability.Heals {
		pool = living(b.roster(own))
	}
	targets := pool
	if !ability.TargetsAll {
		targets = []*character.Character{pool[b.opts.Source.Intn(len(pool))]}
	}
	b.applyAbilityLocked(actor, ability, targets)
}
