// Package main runs one chapter battle non-interactively: the party is driven
// by an autopilot, enemies by the configured AI, and the session is saved
// afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gospelrpg/internal/config"
	"github.com/cory-johannsen/gospelrpg/internal/game/ai"
	"github.com/cory-johannsen/gospelrpg/internal/game/combat"
	"github.com/cory-johannsen/gospelrpg/internal/game/dice"
	"github.com/cory-johannsen/gospelrpg/internal/game/session"
	"github.com/cory-johannsen/gospelrpg/internal/observability"
	"github.com/cory-johannsen/gospelrpg/internal/scripting"
	"github.com/cory-johannsen/gospelrpg/internal/storage/postgres"
	"github.com/cory-johannsen/gospelrpg/internal/storage/savefile"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	encounterID := flag.String("encounter", "", "encounter ID to fight; empty = the session's current chapter")
	seed := flag.Int64("seed", 0, "random seed for a reproducible run; 0 = crypto randomness")
	slot := flag.String("save-slot", "slot1", "save slot to load and write")
	reset := flag.Bool("reset", false, "start a new game in the save slot")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "battlesim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	lib, err := loadLibrary(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("templates", len(lib.chars.TemplateIDs())),
		zap.Int("items", len(lib.items.IDs())),
		zap.Int("chapters", len(lib.encounters.Chapters())),
		zap.Duration("elapsed", time.Since(start)),
	)

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	src = dice.NewLoggedSource(src, logger)

	chooser := ai.NewRegistry(ai.RandomChooser{})
	if cfg.Content.Scripts != "" {
		limit := cfg.Content.ScriptInstructionLimit
		if limit == 0 {
			limit = scripting.DefaultInstructionLimit
		}
		mgr := scripting.NewManager(src, logger)
		defer mgr.Close()
		if err := mgr.Load(cfg.Content.Scripts, limit); err != nil {
			logger.Fatal("loading ai scripts", zap.Error(err))
		}
		scripted := ai.NewScriptChooser(mgr, ai.RandomChooser{}, logger)
		for _, id := range lib.bossTemplates() {
			if err := chooser.Register(id, scripted); err != nil {
				logger.Fatal("registering boss ai", zap.Error(err))
			}
		}
	}

	var repo session.Repository
	switch cfg.Save.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database not ready; run cmd/migrate first", zap.Error(err))
		}
		logger.Info("database connected", zap.String("host", cfg.Database.Host))
		repo = pool.Sessions()
	default:
		store, err := savefile.NewStore(cfg.Save.Dir)
		if err != nil {
			logger.Fatal("opening save directory", zap.Error(err))
		}
		repo = store
	}

	sessions := session.NewManager(repo, lib.chars, lib.items, logger)
	if *reset {
		if err := sessions.Reset(ctx, *slot); err != nil {
			logger.Fatal("resetting save slot", zap.Error(err))
		}
	}
	sess, created, err := sessions.Open(ctx, *slot)
	if err != nil {
		logger.Fatal("opening session", zap.Error(err))
	}

	enc, ok := lib.encounters.ForChapter(sess.Chapter())
	if *encounterID != "" {
		enc, ok = lib.encounters.Encounter(*encounterID)
	}
	if !ok {
		if *encounterID != "" {
			logger.Fatal("unknown encounter", zap.String("encounter", *encounterID))
		}
		fmt.Fprintf(os.Stdout, "All chapters complete (%v). Use -reset to play again.\n", sess.ChaptersCompleted())
		return
	}
	if created {
		fmt.Fprintln(os.Stdout, "A new journey begins.")
	}
	fmt.Fprintf(os.Stdout, "Chapter %d: %s (%s)\n\n", enc.Chapter, enc.Title, enc.Subtitle)

	enemies, err := enc.Spawn(lib.chars)
	if err != nil {
		logger.Fatal("spawning enemies", zap.Error(err))
	}

	var sched combat.Scheduler = combat.NewImmediateScheduler()
	if cfg.Battle.AIDelay > 0 {
		sched = combat.NewTimerScheduler(cfg.Battle.AIDelay)
	}
	wake := newWaker()
	engine := combat.NewEngine(combat.Options{
		Ledger:       sess.Ledger,
		Source:       src,
		Observer:     combat.MultiObserver{observability.EventLogger(logger), wake},
		Scheduler:    sched,
		Chooser:      chooser,
		Policy:       battlePolicy(cfg.Battle),
		AIDelayTicks: cfg.Battle.AIDelayTicks,
		Logger:       logger,
	})

	b, err := engine.StartBattle(sess.Party(), enemies)
	if err != nil {
		logger.Fatal("starting battle", zap.Error(err))
	}
	outcome, err := runBattle(ctx, b, wake, logger)
	engine.EndBattle(b.ID())
	for _, line := range b.Log() {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		logger.Error("battle interrupted", zap.Error(err))
		return
	}

	switch outcome {
	case combat.Victory:
		v, err := sess.ApplyVictory(enc, lib.items, lib.chars)
		if err != nil {
			logger.Fatal("applying victory", zap.Error(err))
		}
		fmt.Fprintf(os.Stdout, "\nVictory! %s has been overcome.\n", enc.Boss)
		fmt.Fprintf(os.Stdout, "Rewards: %v\n", v.Rewards)
		if len(v.Recruited) > 0 {
			fmt.Fprintf(os.Stdout, "Joined the party: %v\n", v.Recruited)
		}
	case combat.Defeat:
		sess.ApplyDefeat()
		fmt.Fprintln(os.Stdout, "\nThe party has fallen. Rest and try again.")
	}

	if err := sessions.Close(ctx, *slot); err != nil {
		logger.Fatal("saving session", zap.Error(err))
	}
	logger.Info("battlesim finished",
		zap.String("outcome", outcome.String()),
		zap.Int("next_chapter", sess.Chapter()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// battlePolicy maps the battle configuration onto engine rules.
func battlePolicy(cfg config.BattleConfig) combat.Policy {
	return combat.Policy{
		Defeat:            combat.DefeatPolicy(cfg.DefeatPolicy),
		Defend:            combat.DefendPolicy(cfg.DefendPolicy),
		DefendBonus:       cfg.DefendBonus,
		PermissiveTargets: !cfg.TargetValidation,
		VarianceMinBP:     cfg.VarianceMinBP,
		VarianceMaxBP:     cfg.VarianceMaxBP,
		LogCapacity:       cfg.LogCapacity,
	}
}
