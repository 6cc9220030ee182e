package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
)

// Attack has the current party actor strike targetID with the basic attack.
// Power is the source's attack stat plus equipment attack.
//
// Precondition: sourceID is the current, living, human-controlled actor.
// Postcondition: on success the target took >= 1 damage and the turn advanced
// unless the battle concluded.
func (b *Battle) Attack(sourceID, targetID string) (ActionResult, error) {
	b.mu.Lock()
	defer b.finish()
	defer b.mu.Unlock()

	src, err := b.actorLocked(sourceID)
	if err != nil {
		return ActionResult{}, err
	}
	tgt, err := b.damageTargetLocked(src, targetID)
	if err != nil {
		return ActionResult{}, err
	}
	res := ActionResult{ActorID: src.ID, AbilityID: character.BasicStrike.ID}
	dmg := b.resolver.Damage(src, tgt, src.Attack)
	res.Hits = append(res.Hits, b.applyDamageLocked(tgt, dmg))
	b.narrate(fmt.Sprintf("%s strikes %s for %d damage!", src.Name, tgt.Name, dmg.Amount))

	b.afterActionLocked()
	res.Outcome = b.outcome
	return res, nil
}

// UseAbility has the current party actor use abilityID. targetID is ignored
// for all-target abilities.
//
// Precondition: sourceID is the current, living, human-controlled actor and
// knows abilityID.
// Postcondition: on ErrInsufficientMP nothing changed except the narration log
// and the turn did not advance.
func (b *Battle) UseAbility(sourceID, abilityID, targetID string) (ActionResult, error) {
	b.mu.Lock()
	defer b.finish()
	defer b.mu.Unlock()

	src, err := b.actorLocked(sourceID)
	if err != nil {
		return ActionResult{}, err
	}
	ability, ok := src.Ability(abilityID)
	if !ok {
		return ActionResult{}, fmt.Errorf("%s: %w", abilityID, ErrUnknownAbility)
	}

	var targets []*character.Character
	switch {
	case ability.TargetsAll && ability.Heals:
		targets = living(b.roster(b.side[src]))
	case ability.TargetsAll:
		targets = living(b.roster(b.side[src].Opponent()))
	case ability.Heals:
		t, err := b.healTargetLocked(src, targetID)
		if err != nil {
			return ActionResult{}, err
		}
		targets = []*character.Character{t}
	default:
		t, err := b.damageTargetLocked(src, targetID)
		if err != nil {
			return ActionResult{}, err
		}
		targets = []*character.Character{t}
	}

	if !src.UseMP(ability.MPCost) {
		b.narrate(fmt.Sprintf("%s doesn't have enough MP!", src.Name))
		b.emit(Event{Kind: EventInsufficientMP, CharacterID: src.ID, Amount: ability.MPCost})
		return ActionResult{}, ErrInsufficientMP
	}
	if ability.HasScripture() {
		b.lastScripture = fmt.Sprintf("%s: %s", ability.ScriptureRef, ability.Description)
	}

	res := ActionResult{ActorID: src.ID, AbilityID: ability.ID}
	res.Hits = b.applyAbilityLocked(src, ability, targets)
	b.afterActionLocked()
	res.Outcome = b.outcome
	return res, nil
}

// Defend raises the current party actor's defense by the policy bonus and
// ends its turn.
func (b *Battle) Defend(sourceID string) (ActionResult, error) {
	b.mu.Lock()
	defer b.finish()
	defer b.mu.Unlock()

	src, err := b.actorLocked(sourceID)
	if err != nil {
		return ActionResult{}, err
	}
	bonus := b.policy.DefendBonus
	src.Defense += bonus
	if b.policy.Defend == DefendUntilNextTurn {
		b.defending[src] += bonus
	}
	b.narrate(fmt.Sprintf("%s defends! Defense increased.", src.Name))
	b.emit(Event{Kind: EventDefend, CharacterID: src.ID, Amount: bonus})

	b.nextTurnLocked()
	return ActionResult{ActorID: src.ID, AbilityID: "defend", Outcome: b.outcome}, nil
}

// actorLocked validates that id names the current living human-controlled actor.
func (b *Battle) actorLocked(id string) (*character.Character, error) {
	if !b.inProgressLocked() {
		return nil, ErrBattleNotInProgress
	}
	if b.current == nil || b.current.ID != id || !b.current.IsAlive() {
		return nil, ErrNotYourTurn
	}
	if !b.current.Class.HumanControlled() {
		return nil, ErrNotHumanTurn
	}
	return b.current, nil
}

func (b *Battle) damageTargetLocked(src *character.Character, id string) (*character.Character, error) {
	t, ok := b.find(id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrInvalidTarget)
	}
	if b.policy.PermissiveTargets {
		return t, nil
	}
	if !t.IsAlive() || b.side[t] == b.side[src] {
		return nil, fmt.Errorf("%q: %w", id, ErrInvalidTarget)
	}
	return t, nil
}

func (b *Battle) healTargetLocked(src *character.Character, id string) (*character.Character, error) {
	t, ok := b.find(id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrInvalidTarget)
	}
	if b.policy.PermissiveTargets {
		return t, nil
	}
	if !t.IsAlive() || b.side[t] != b.side[src] {
		return nil, fmt.Errorf("%q: %w", id, ErrInvalidTarget)
	}
	return t, nil
}

// applyAbilityLocked resolves ability against targets. Every damage target
// gets its own variance roll.
func (b *Battle) applyAbilityLocked(src *character.Character, a character.Ability, targets []*character.Character) []Hit {
	hits := make([]Hit, 0, len(targets))
	if a.Heals {
		amount := HealAmount(src, a)
		for _, t := range targets {
			t.Heal(amount)
			hits = append(hits, Hit{TargetID: t.ID, Amount: amount, Heal: true, EnemySide: b.side[t] == SideEnemy})
			b.emit(Event{Kind: EventHeal, CharacterID: t.ID, EnemySide: b.side[t] == SideEnemy, Amount: amount})
		}
		switch {
		case a.TargetsAll && b.side[src] == SideParty:
			b.narrate(fmt.Sprintf("%s uses %s! Party healed for %d HP!", src.Name, a.Name, amount))
		case a.TargetsAll:
			b.narrate(fmt.Sprintf("%s uses %s! Allies healed for %d HP!", src.Name, a.Name, amount))
		case len(targets) == 1:
			b.narrate(fmt.Sprintf("%s uses %s on %s! Healed %d HP!", src.Name, a.Name, targets[0].Name, amount))
		}
		return hits
	}

	power := AbilityPower(src, a)
	if a.TargetsAll {
		b.narrate(fmt.Sprintf("%s uses %s!", src.Name, a.Name))
		for _, t := range targets {
			dmg := b.resolver.Damage(src, t, power)
			hits = append(hits, b.applyDamageLocked(t, dmg))
			b.narrate(fmt.Sprintf("%s hits %s for %d!", src.Name, t.Name, dmg.Amount))
		}
		return hits
	}
	for _, t := range targets {
		dmg := b.resolver.Damage(src, t, power)
		hits = append(hits, b.applyDamageLocked(t, dmg))
		b.narrate(fmt.Sprintf("%s uses %s on %s for %d damage!", src.Name, a.Name, t.Name, dmg.Amount))
	}
	return hits
}

func (b *Battle) applyDamageLocked(t *character.Character, dmg DamageResult) Hit {
	t.TakeDamage(dmg.Amount)
	enemy := b.side[t] == SideEnemy
	b.emit(Event{Kind: EventDamage, CharacterID: t.ID, EnemySide: enemy, Amount: dmg.Amount})
	b.logger.Debug("damage dealt",
		zap.String("attacker_id", dmg.AttackerID),
		zap.String("defender_id", dmg.DefenderID),
		zap.Int("base", dmg.Base),
		zap.Int("defense", dmg.Defense),
		zap.Int("variance_bp", dmg.VarianceBP),
		zap.Int("amount", dmg.Amount),
		zap.Int("hp_after", t.HP),
	)
	return Hit{TargetID: t.ID, Amount: dmg.Amount, EnemySide: enemy}
}

// afterActionLocked checks end conditions and passes the turn on when the
// battle continues.
func (b *Battle) afterActionLocked() {
	b.checkEndLocked()
	b.nextTurnLocked()
}
