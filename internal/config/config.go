package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/wesen/stategraph/pkg/log"
)

// DefaultFile is read from the working directory when present.
const DefaultFile = "stategraph.toml"

// EnvPrefix marks environment overrides, e.g. STATEGRAPH_LOG_LEVEL=debug.
const EnvPrefix = "STATEGRAPH_"

// Store backends.
const (
	StoreYAML   = "yaml"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds all configuration for the editor.
type Config struct {
	Graph    string `koanf:"graph"`
	Name     string `koanf:"name"`
	Store    string `koanf:"store"`
	SQLite   string `koanf:"sqlite"`
	Redis    string `koanf:"redis"`
	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`
	Watch    bool   `koanf:"watch"`
	MaxSteps int    `koanf:"max_steps"`
	Run      bool   `koanf:"run"`
}

var defaults = map[string]interface{}{
	"graph":     "graph.yaml",
	"name":      "main",
	"store":     StoreYAML,
	"sqlite":    "stategraph.db",
	"redis":     "localhost:6379",
	"log_level": "info",
	"log_file":  "stategraph.log",
	"watch":     true,
	"max_steps": 1000,
	"run":       false,
}

// Flags returns the command-line flags. Dashed flag names map to the
// underscored keys.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("stategraph", pflag.ContinueOnError)
	f.String("config", DefaultFile, "TOML config file")
	f.StringP("graph", "g", "graph.yaml", "graph file for the yaml store")
	f.StringP("name", "n", "main", "graph name")
	f.String("store", StoreYAML, "store backend: yaml, sqlite or redis")
	f.String("sqlite", "stategraph.db", "SQLite database path")
	f.String("redis", "localhost:6379", "Redis address")
	f.String("log-level", "info", "log level: debug, info, warn, error, none")
	f.String("log-file", "stategraph.log", "log file (the terminal belongs to the UI)")
	f.Bool("watch", true, "reload when the graph file changes on disk")
	f.Int("max-steps", 1000, "step limit for a run")
	f.Bool("run", false, "run the graph headless and print its output")
	return f
}

// Load merges defaults, the TOML file, environment and flags, in that
// order of increasing priority. A missing config file is not an error.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := DefaultFile
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			path = p
		}
	}
	_ = k.Load(file.Provider(path), toml.Parser())

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(fl.Name, "-", "_"), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown stores, levels and non-positive step limits.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreYAML, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() log.LogLevel {
	l, _ := log.ParseLevel(c.LogLevel)
	return l
}

type mapProvider map[string]interface{}

func (p mapProvider) Read() (map[string]interface{}, error) {
	return p, nil
}

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
