package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/gospelrpg/internal/config"
	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg, "battlesim")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg, "battlesim")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg, "battlesim")
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg, "battlesim")
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg, "battlesim")
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_NamedForComponent(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrate", logger.Name())
}

func TestNewLogger_EmptyComponent(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	_, err := NewLogger(cfg, "")
	assert.Error(t, err)
}

func TestNewLogger_LevelGatesEntries(t *testing.T) {
	cfg := config.LoggingConfig{Level: "warn", Format: "json"}
	logger, err := NewLogger(cfg, "battlesim")
	require.NoError(t, err)
	assert.Nil(t, logger.Check(zap.InfoLevel, "turn"))
	assert.NotNil(t, logger.Check(zap.WarnLevel, "turn"))
}

func TestEventLogger_LevelsByKind(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	obs := EventLogger(zap.New(core))

	obs.Notify(combat.Event{Kind: combat.EventDamage, BattleID: "b1", CharacterID: "demon", EnemySide: true, Amount: 12})
	obs.Notify(combat.Event{Kind: combat.EventBattleEnd, BattleID: "b1", Victory: true})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "damage", entries[0].ContextMap()["kind"])
	assert.Equal(t, int64(12), entries[0].ContextMap()["amount"])
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
	assert.Equal(t, true, entries[1].ContextMap()["victory"])
}
