// Package config provides Viper-based configuration loading for the battle
// simulator and its storage backends.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds the rules every battle is created with.
type BattleConfig struct {
	// DefeatPolicy is "all_party" or "exempt_protagonist".
	DefeatPolicy string `mapstructure:"defeat_policy"`
	// DefendPolicy is "until_next_turn" or "persistent".
	DefendPolicy string `mapstructure:"defend_policy"`
	// DefendBonus is the flat defense added by a defend action; must be >= 1.
	DefendBonus int `mapstructure:"defend_bonus"`
	// TargetValidation rejects dead targets and wrong-side targets.
	TargetValidation bool `mapstructure:"target_validation"`
	// VarianceMinBP and VarianceMaxBP bound damage variance in basis points.
	VarianceMinBP int `mapstructure:"variance_min_bp"`
	VarianceMaxBP int `mapstructure:"variance_max_bp"`
	// LogCapacity bounds the narration log; 0 is unbounded.
	LogCapacity int `mapstructure:"log_capacity"`
	// AIDelayTicks is the delay before an enemy acts, in scheduler ticks.
	AIDelayTicks int `mapstructure:"ai_delay_ticks"`
	// AIDelay is the length of one tick for the wall-clock scheduler; 0 runs
	// enemy turns immediately.
	AIDelay time.Duration `mapstructure:"ai_delay"`
}

// ContentConfig locates the YAML and Lua content files.
type ContentConfig struct {
	Abilities  string `mapstructure:"abilities"`
	Characters string `mapstructure:"characters"`
	Items      string `mapstructure:"items"`
	Encounters string `mapstructure:"encounters"`
	// Scripts is a directory of Lua AI scripts; empty disables scripted AI.
	Scripts string `mapstructure:"scripts"`
	// ScriptInstructionLimit caps opcodes per hook call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// SaveConfig selects where sessions are persisted.
type SaveConfig struct {
	// Backend is "file" or "postgres".
	Backend string `mapstructure:"backend"`
	// Dir is the save directory for the file backend.
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Content  ContentConfig  `mapstructure:"content"`
	Save     SaveConfig     `mapstructure:"save"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Save.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSave(c.Save); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	validDefeat := map[string]bool{"all_party": true, "exempt_protagonist": true}
	if !validDefeat[b.DefeatPolicy] {
		errs = append(errs, fmt.Sprintf("battle.defeat_policy must be one of [all_party, exempt_protagonist], got %q", b.DefeatPolicy))
	}
	validDefend := map[string]bool{"until_next_turn": true, "persistent": true}
	if !validDefend[b.DefendPolicy] {
		errs = append(errs, fmt.Sprintf("battle.defend_policy must be one of [until_next_turn, persistent], got %q", b.DefendPolicy))
	}
	if b.DefendBonus < 1 {
		errs = append(errs, fmt.Sprintf("battle.defend_bonus must be >= 1, got %d", b.DefendBonus))
	}
	if b.VarianceMinBP < 1 || b.VarianceMaxBP < b.VarianceMinBP {
		errs = append(errs, fmt.Sprintf("battle.variance_min_bp must be >= 1 and <= battle.variance_max_bp, got [%d, %d]", b.VarianceMinBP, b.VarianceMaxBP))
	}
	if b.LogCapacity < 0 {
		errs = append(errs, fmt.Sprintf("battle.log_capacity must be >= 0, got %d", b.LogCapacity))
	}
	if b.AIDelayTicks < 0 {
		errs = append(errs, fmt.Sprintf("battle.ai_delay_ticks must be >= 0, got %d", b.AIDelayTicks))
	}
	if b.AIDelay < 0 {
		errs = append(errs, "battle.ai_delay must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Abilities == "" {
		errs = append(errs, "content.abilities must not be empty")
	}
	if c.Characters == "" {
		errs = append(errs, "content.characters must not be empty")
	}
	if c.Items == "" {
		errs = append(errs, "content.items must not be empty")
	}
	if c.Encounters == "" {
		errs = append(errs, "content.encounters must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSave(s SaveConfig) error {
	switch s.Backend {
	case "file":
		if s.Dir == "" {
			return errors.New("save.dir must not be empty for the file backend")
		}
	case "postgres":
	default:
		return fmt.Errorf("save.backend must be one of [file, postgres], got %q", s.Backend)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and
// environment variables only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with GOSPEL_ prefix
	v.SetEnvPrefix("GOSPEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gospel")
	v.SetDefault("database.password", "gospel")
	v.SetDefault("database.name", "gospel")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.defeat_policy", "all_party")
	v.SetDefault("battle.defend_policy", "until_next_turn")
	v.SetDefault("battle.defend_bonus", 5)
	v.SetDefault("battle.target_validation", true)
	v.SetDefault("battle.variance_min_bp", 8500)
	v.SetDefault("battle.variance_max_bp", 11500)
	v.SetDefault("battle.log_capacity", 0)
	v.SetDefault("battle.ai_delay_ticks", 1)
	v.SetDefault("battle.ai_delay", "0s")

	v.SetDefault("content.abilities", "content/abilities")
	v.SetDefault("content.characters", "content/characters")
	v.SetDefault("content.items", "content/items")
	v.SetDefault("content.encounters", "content/encounters")
	v.SetDefault("content.scripts", "content/scripts/ai")
	v.SetDefault("content.script_instruction_limit", 0)

	v.SetDefault("save.backend", "file")
	v.SetDefault("save.dir", "saves")
}
