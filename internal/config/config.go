package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dyuri/shoredb/internal/model"
)

// DefaultPath is looked up in the working directory when --config is not given.
const DefaultPath = "shoredb.toml"

// Config holds all user-facing configuration for shoredb.
type Config struct {
	Log   LogConfig   `toml:"log"`
	Check CheckConfig `toml:"check"`
	Edit  EditConfig  `toml:"edit"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// CheckConfig tunes checkarea and validate.
type CheckConfig struct {
	MinAreaRatio  float64 `toml:"min_area_ratio"`
	AreaTolerance float64 `toml:"area_tolerance"`
	Strict        bool    `toml:"strict"`
}

// EditConfig selects how fixlevel and reparent touch the database:
// "staged", "dry-run" or "in-place".
type EditConfig struct {
	Staging string `toml:"staging"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Check: CheckConfig{MinAreaRatio: 0.5, AreaTolerance: 0.02},
		Edit:  EditConfig{Staging: "staged"},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command could honour.
func (c *Config) Validate() error {
	if c.Check.MinAreaRatio <= 0 || c.Check.MinAreaRatio > 1 {
		return model.Errorf(model.CodeInvalidArgument, nil, "check.min_area_ratio must be in (0, 1], got %v", c.Check.MinAreaRatio)
	}
	if c.Check.AreaTolerance < 0 {
		return model.Errorf(model.CodeInvalidArgument, nil, "check.area_tolerance must not be negative")
	}
	switch c.Edit.Staging {
	case "staged", "dry-run", "in-place":
	default:
		return model.Errorf(model.CodeInvalidArgument, nil, "unknown edit.staging %q", c.Edit.Staging)
	}
	return nil
}
