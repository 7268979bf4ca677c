// Package config loads server configuration from an optional YAML file,
// an optional .env file, and environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// Store selection values.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds all server settings.
type Config struct {
	ListenAddr string

	// Store selects snapshot persistence: memory, file, or redis.
	Store            string
	SnapshotPath     string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	AutosaveInterval time.Duration

	// Seed drives the synthetic generators; 0 means derive from the clock.
	Seed         int64
	AnalysisDays int

	// SpecialZone is the scoring bonus region. Defaults to a Central
	// Valley style box when unset.
	SpecialZone model.ZoneRegion
}

// fileConfig is the YAML shape; durations are strings like "30s", and
// unset fields leave the defaults untouched.
type fileConfig struct {
	ListenAddr       *string `yaml:"listen_addr"`
	Store            *string `yaml:"store"`
	SnapshotPath     *string `yaml:"snapshot_path"`
	RedisAddr        *string `yaml:"redis_addr"`
	RedisPassword    *string `yaml:"redis_password"`
	RedisDB          *int    `yaml:"redis_db"`
	AutosaveInterval *string `yaml:"autosave_interval"`
	Seed             *int64  `yaml:"seed"`
	AnalysisDays     *int    `yaml:"analysis_days"`
	SpecialZone      *struct {
		North float64 `yaml:"north"`
		South float64 `yaml:"south"`
		East  float64 `yaml:"east"`
		West  float64 `yaml:"west"`
	} `yaml:"special_zone"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ListenAddr:       ":8080",
		Store:            StoreMemory,
		SnapshotPath:     "farmgame_snapshot.json",
		RedisAddr:        "localhost:6379",
		AutosaveInterval: 30 * time.Second,
		AnalysisDays:     30,
		SpecialZone: model.ZoneRegion{
			North: 37.0,
			South: 36.0,
			East:  -119.0,
			West:  -121.0,
		},
	}
}

// Load builds the configuration. A non-empty path names a YAML file that
// must exist; .env is loaded when present; environment variables win over
// both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("config file %q: %w", path, err)
		}
	}

	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, or redis)", c.Store)
	}
	if c.Store == StoreFile && c.SnapshotPath == "" {
		return fmt.Errorf("file store requires snapshot_path")
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis store requires redis_addr")
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave_interval must not be negative")
	}
	if c.AnalysisDays <= 0 {
		return fmt.Errorf("analysis_days must be positive")
	}
	if !c.SpecialZone.IsValid() {
		return fmt.Errorf("special_zone bounds are invalid")
	}
	return nil
}

func (fc fileConfig) apply(cfg *Config) error {
	if fc.ListenAddr != nil {
		cfg.ListenAddr = *fc.ListenAddr
	}
	if fc.Store != nil {
		cfg.Store = *fc.Store
	}
	if fc.SnapshotPath != nil {
		cfg.SnapshotPath = *fc.SnapshotPath
	}
	if fc.RedisAddr != nil {
		cfg.RedisAddr = *fc.RedisAddr
	}
	if fc.RedisPassword != nil {
		cfg.RedisPassword = *fc.RedisPassword
	}
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	if fc.AutosaveInterval != nil {
		d, err := time.ParseDuration(*fc.AutosaveInterval)
		if err != nil {
			return fmt.Errorf("autosave_interval: %w", err)
		}
		cfg.AutosaveInterval = d
	}
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.AnalysisDays != nil {
		cfg.AnalysisDays = *fc.AnalysisDays
	}
	if fc.SpecialZone != nil {
		cfg.SpecialZone = model.ZoneRegion{
			North: fc.SpecialZone.North,
			South: fc.SpecialZone.South,
			East:  fc.SpecialZone.East,
			West:  fc.SpecialZone.West,
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FARMGAME_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("FARMGAME_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("FARMGAME_SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}
	if v := os.Getenv("FARMGAME_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("FARMGAME_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("FARMGAME_REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = parsed
		}
	}
	if v := os.Getenv("FARMGAME_AUTOSAVE_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.AutosaveInterval = parsed
		}
	}
	if v := os.Getenv("FARMGAME_SEED"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = parsed
		}
	}
	if v := os.Getenv("FARMGAME_ANALYSIS_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AnalysisDays = parsed
		}
	}
	if zone, ok := zoneFromEnv(); ok {
		cfg.SpecialZone = zone
	}
}

// zoneFromEnv reads the special zone only when all four bounds are set.
func zoneFromEnv() (model.ZoneRegion, bool) {
	var zone model.ZoneRegion
	bounds := []struct {
		key string
		dst *float64
	}{
		{"FARMGAME_ZONE_NORTH", &zone.North},
		{"FARMGAME_ZONE_SOUTH", &zone.South},
		{"FARMGAME_ZONE_EAST", &zone.East},
		{"FARMGAME_ZONE_WEST", &zone.West},
	}
	for _, b := range bounds {
		raw := os.Getenv(b.key)
		if raw == "" {
			return model.ZoneRegion{}, false
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.ZoneRegion{}, false
		}
		*b.dst = parsed
	}
	return zone, true
}
