package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
)

// maxRejections bounds consecutive rejected autopilot moves before the
// party falls back to defending.
const maxRejections = 3

// waker is a combat.Observer that signals when a party turn begins or the
// battle ends. The channel holds at most one pending signal.
type waker struct {
	ch chan struct{}
}

func newWaker() *waker { return &waker{ch: make(chan struct{}, 1)} }

// Notify implements combat.Observer.
func (w *waker) Notify(e combat.Event) {
	if (e.Kind == combat.EventTurnStart && e.HumanControlled) || e.Kind == combat.EventBattleEnd {
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

// runBattle drives the party with the autopilot until the battle concludes.
// Cancelling ctx abandons the battle.
//
// Precondition: b has been started.
// Postcondition: returns the final outcome, or ctx's error after abandoning.
func runBattle(ctx context.Context, b *combat.Battle, w *waker, logger *zap.Logger) (combat.Outcome, error) {
	rejected := 0
	for b.InProgress() {
		s := b.Snapshot()
		if !s.PlayerTurn {
			select {
			case <-w.ch:
			case <-ctx.Done():
				b.Abandon()
				return combat.Ongoing, ctx.Err()
			}
			continue
		}

		m := choose(s)
		if rejected >= maxRejections {
			m = move{kind: moveDefend}
		}
		if err := perform(b, s.CurrentID, m); err != nil {
			if errors.Is(err, combat.ErrNotYourTurn) || errors.Is(err, combat.ErrBattleNotInProgress) {
				continue
			}
			rejected++
			logger.Debug("autopilot move rejected",
				zap.String("actor", s.CurrentID),
				zap.String("ability", m.abilityID),
				zap.String("target", m.targetID),
				zap.Error(err),
			)
			continue
		}
		rejected = 0
	}
	return b.Outcome(), nil
}

func perform(b *combat.Battle, actorID string, m move) error {
	var err error
	switch m.kind {
	case moveAttack:
		_, err = b.Attack(actorID, m.targetID)
	case moveAbility:
		_, err = b.UseAbility(actorID, m.abilityID, m.targetID)
	case moveDefend:
		_, err = b.Defend(actorID)
	default:
		err = fmt.Errorf("unknown move kind %d", m.kind)
	}
	return err
}
