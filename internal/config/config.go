package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/genson/internal/logging"
	"github.com/aretw0/genson/internal/runtime"
	"github.com/aretw0/genson/pkg/tgl"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no configuration file is named.
const DefaultPath = "genson.yaml"

// Config is the CLI configuration file (genson.yaml or genson.json).
type Config struct {
	// Schema is a schema file, a Loam directory, or empty when reading Redis.
	Schema string `yaml:"schema" json:"schema"`
	Root   string `yaml:"root" json:"root"`

	MaxDepth        int     `yaml:"max_depth" json:"max_depth"`
	MaxIterations   int     `yaml:"max_iterations" json:"max_iterations"`
	ContinueCeiling int     `yaml:"continue_ceiling" json:"continue_ceiling"`
	Seed            *uint64 `yaml:"seed" json:"seed"`
	LineMode        string  `yaml:"line_mode" json:"line_mode"`
	LogLevel        string  `yaml:"log_level" json:"log_level"`

	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig locates a schema published to Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		MaxDepth:        tgl.DefaultMaxDepth,
		MaxIterations:   tgl.DefaultMaxIterations,
		ContinueCeiling: runtime.DefaultContinueCeiling,
		LineMode:        runtime.LineRaw.String(),
		LogLevel:        "warn",
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file at DefaultPath is not an error; a missing file the caller
// named explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate checks limits and names.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations))
	}
	if c.ContinueCeiling < 0 {
		errs = append(errs, fmt.Errorf("continue_ceiling must not be negative, got %d", c.ContinueCeiling))
	}
	if _, err := runtime.ParseLineMode(c.LineMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
