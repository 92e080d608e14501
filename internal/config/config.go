// Package config provides the game configuration and balance rules.
// Values start from in-code defaults, are overlaid by an optional YAML file
// and finally by DEEPRUINS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"chosenoffset.com/deepruins/internal/dungeon"
	"chosenoffset.com/deepruins/internal/world"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "DEEPRUINS_"

// Save backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds the process-level settings
type Config struct {
	// Window
	ScreenWidth  int    `yaml:"screen_width" env:"SCREEN_WIDTH"`
	ScreenHeight int    `yaml:"screen_height" env:"SCREEN_HEIGHT"`
	Title        string `yaml:"title" env:"TITLE"`
	TPS          int    `yaml:"tps" env:"TPS"`

	// Persistence
	SaveBackend string `yaml:"save_backend" env:"SAVE_BACKEND"` // file or sqlite
	SavePath    string `yaml:"save_path" env:"SAVE_PATH"`       // directory for file, database path for sqlite
	SaveSlot    string `yaml:"save_slot" env:"SAVE_SLOT"`

	// Logging
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"` // text or json

	// Seed for the game RNG. Zero picks a random seed.
	Seed int64 `yaml:"seed" env:"SEED"`

	// DebugAddr enables the inspector when set, e.g. "127.0.0.1:8089"
	DebugAddr string `yaml:"debug_addr" env:"DEBUG_ADDR"`

	// Optional directories overriding embedded content and placeholder textures
	ContentDir string `yaml:"content_dir" env:"CONTENT_DIR"`
	AssetDir   string `yaml:"asset_dir" env:"ASSET_DIR"`

	Rules Rules `yaml:"rules" envPrefix:"RULES_"`
}

// Rules holds the balance constants shared by the scenes
type Rules struct {
	// Overworld
	PlayerSpeed    float64 `yaml:"player_speed" env:"PLAYER_SPEED"`
	WorldWidth     float64 `yaml:"world_width" env:"WORLD_WIDTH"`
	WorldHeight    float64 `yaml:"world_height" env:"WORLD_HEIGHT"`
	WorldMargin    float64 `yaml:"world_margin" env:"WORLD_MARGIN"`
	AreaRadius     float64 `yaml:"area_radius" env:"AREA_RADIUS"`
	EncounterSteps int     `yaml:"encounter_steps" env:"ENCOUNTER_STEPS"`
	EncounterRate  float64 `yaml:"encounter_rate" env:"ENCOUNTER_RATE"`
	CameraSeconds  float64 `yaml:"camera_seconds" env:"CAMERA_SECONDS"`

	// Dungeon
	DungeonWidth           int     `yaml:"dungeon_width" env:"DUNGEON_WIDTH"`
	DungeonHeight          int     `yaml:"dungeon_height" env:"DUNGEON_HEIGHT"`
	DungeonEnemyDensity    float64 `yaml:"dungeon_enemy_density" env:"DUNGEON_ENEMY_DENSITY"`
	DungeonTreasureDensity float64 `yaml:"dungeon_treasure_density" env:"DUNGEON_TREASURE_DENSITY"`
	DungeonEncounterRate   float64 `yaml:"dungeon_encounter_rate" env:"DUNGEON_ENCOUNTER_RATE"`
	DungeonStepSeconds     float64 `yaml:"dungeon_step_seconds" env:"DUNGEON_STEP_SECONDS"`

	// Presentation timing
	FadeSeconds       float64 `yaml:"fade_seconds" env:"FADE_SECONDS"`
	TypewriterSeconds float64 `yaml:"typewriter_seconds" env:"TYPEWRITER_SECONDS"` // per character
}

// Default returns the standard configuration
func Default() *Config {
	return &Config{
		ScreenWidth:  800,
		ScreenHeight: 600,
		Title:        "Deep Ruins",
		TPS:          60,
		SaveBackend:  BackendFile,
		SavePath:     "saves",
		SaveSlot:     "default",
		LogLevel:     "info",
		LogFormat:    "text",
		Rules:        DefaultRules(),
	}
}

// DefaultRules returns the standard balance constants
func DefaultRules() Rules {
	ow := world.DefaultRules()
	dg := dungeon.DefaultRules()
	return Rules{
		PlayerSpeed:            ow.Speed,
		WorldWidth:             ow.Width,
		WorldHeight:            ow.Height,
		WorldMargin:            ow.Margin,
		AreaRadius:             ow.AreaRadius,
		EncounterSteps:         ow.EncounterEvery,
		EncounterRate:          ow.EncounterRate,
		CameraSeconds:          float64(ow.CameraSeconds),
		DungeonWidth:           dg.Width,
		DungeonHeight:          dg.Height,
		DungeonEnemyDensity:    dg.EnemyDensity,
		DungeonTreasureDensity: dg.TreasureDensity,
		DungeonEncounterRate:   dg.EncounterRate,
		DungeonStepSeconds:     0.2,
		FadeSeconds:            0.5,
		TypewriterSeconds:      0.03,
	}
}

// Load builds the configuration. A missing file is not an error; the
// defaults are used and the environment still applies.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with
func (c *Config) Validate() error {
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("invalid tps %d", c.TPS)
	}
	switch c.SaveBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown save backend %q", c.SaveBackend)
	}
	if c.SaveSlot == "" {
		return errors.New("save slot must not be empty")
	}
	return c.Rules.Validate()
}

// Validate rejects inconsistent balance constants
func (r Rules) Validate() error {
	if r.DungeonWidth < 5 || r.DungeonHeight < 5 || r.DungeonWidth%2 == 0 || r.DungeonHeight%2 == 0 {
		return fmt.Errorf("dungeon size must be odd and at least 5, got %dx%d", r.DungeonWidth, r.DungeonHeight)
	}
	if r.WorldWidth <= 2*r.WorldMargin || r.WorldHeight <= 2*r.WorldMargin {
		return fmt.Errorf("world %vx%v too small for margin %v", r.WorldWidth, r.WorldHeight, r.WorldMargin)
	}
	if r.PlayerSpeed <= 0 {
		return fmt.Errorf("invalid player speed %v", r.PlayerSpeed)
	}
	if r.EncounterSteps <= 0 {
		return fmt.Errorf("invalid encounter step interval %d", r.EncounterSteps)
	}
	rates := map[string]float64{
		"encounter_rate":           r.EncounterRate,
		"dungeon_enemy_density":    r.DungeonEnemyDensity,
		"dungeon_treasure_density": r.DungeonTreasureDensity,
		"dungeon_encounter_rate":   r.DungeonEncounterRate,
	}
	for name, v := range rates {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	if r.FadeSeconds < 0 || r.TypewriterSeconds < 0 || r.CameraSeconds < 0 || r.DungeonStepSeconds < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// Overworld converts the rules for the overworld traversal with a view of the given size.
func (r Rules) Overworld(viewW, viewH int) world.Rules {
	return world.Rules{
		Speed:          r.PlayerSpeed,
		Width:          r.WorldWidth,
		Height:         r.WorldHeight,
		Margin:         r.WorldMargin,
		AreaRadius:     r.AreaRadius,
		EncounterEvery: r.EncounterSteps,
		EncounterRate:  r.EncounterRate,
		CameraSeconds:  float32(r.CameraSeconds),
		ViewW:          float64(viewW),
		ViewH:          float64(viewH),
	}
}

// Dungeon converts the rules for dungeon generation and traversal
func (r Rules) Dungeon() dungeon.Rules {
	return dungeon.Rules{
		Width:           r.DungeonWidth,
		Height:          r.DungeonHeight,
		EnemyDensity:    r.DungeonEnemyDensity,
		TreasureDensity: r.DungeonTreasureDensity,
		EncounterRate:   r.DungeonEncounterRate,
	}
}
