package combat

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/character"
)

var victoryLines = []string{
	"Victory! The light of faith prevails!",
	"Victory! Darkness flees before the Word!",
	"Victory! The Lord has delivered them into your hand!",
	"Victory! Well done, good and faithful servants!",
}

var defeatLines = []string{
	"The party has fallen... but faith endures. Rise and try again.",
	"Defeat... yet the Lord lifts up those who fall.",
}

// checkEndLocked decides the outcome once. Victory is checked before defeat.
func (b *Battle) checkEndLocked() {
	if !b.inProgressLocked() {
		return
	}
	switch {
	case len(living(b.enemies)) == 0:
		b.concludeLocked(Victory)
	case b.partyDefeatedLocked():
		b.concludeLocked(Defeat)
	}
}

func (b *Battle) partyDefeatedLocked() bool {
	subset := b.party
	if b.policy.Defeat == DefeatExemptProtagonist {
		var mortal []*character.Character
		for _, c := range b.party {
			if c.Class != character.ClassProtagonist {
				mortal = append(mortal, c)
			}
		}
		if len(mortal) > 0 {
			subset = mortal
		}
	}
	return len(living(subset)) == 0
}

func (b *Battle) concludeLocked(o Outcome) {
	ev, lines := evWin, victoryLines
	if o == Defeat {
		ev, lines = evLose, defeatLines
	}
	if err := b.lc.Event(context.Background(), ev); err != nil {
		b.logger.Error("concluding battle", zap.Error(err))
		return
	}
	b.outcome = o
	b.current = nil
	b.needSchedule = false
	b.generation++
	if b.pending != nil {
		b.pending.Cancel()
		b.pending = nil
	}
	b.revertDefendsLocked()
	b.narrate(lines[b.opts.Source.Intn(len(lines))])
	b.ended = true
	b.emit(Event{Kind: EventBattleEnd, Victory: o == Victory})
	b.logger.Info("battle concluded",
		zap.String("outcome", o.String()),
		zap.Int("rounds", b.round),
		zap.Int("turns", b.turns),
	)
}
