package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
)

// EventLogger returns a combat.Observer writing each battle event to logger
// at debug level, and battle ends at info level.
//
// Precondition: logger must be non-nil.
func EventLogger(logger *zap.Logger) combat.Observer {
	return combat.ObserverFunc(func(e combat.Event) {
		fields := []zap.Field{
			zap.String("battle_id", e.BattleID),
			zap.String("kind", e.Kind.String()),
		}
		if e.Kind == combat.EventBattleEnd {
			logger.Info("battle event", append(fields, zap.Bool("victory", e.Victory))...)
			return
		}
		fields = append(fields,
			zap.String("character_id", e.CharacterID),
			zap.Bool("enemy_side", e.EnemySide),
			zap.Int("amount", e.Amount),
		)
		logger.Debug("battle event", fields...)
	})
}
