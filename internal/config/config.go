package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Defaults for settings missing from both the environment and config.toml.
const (
	DefaultHost          = "127.0.0.1"
	DefaultProbeTimeout  = 5 * time.Second
	DefaultProbeEndpoint = "leaderboard"
	DefaultAPITimeout    = 15 * time.Second
	DefaultLogFormat     = "auto"
)

// Config represents the ~/.bnetdata/config.toml file.
type Config struct {
	Host    string  `toml:"host,omitempty" json:"host"`
	Probe   Probe   `toml:"probe,omitempty" json:"probe"`
	API     API     `toml:"api,omitempty" json:"api"`
	Process Process `toml:"process,omitempty" json:"process"`
	Log     Log     `toml:"log,omitempty" json:"log"`
}

// Probe configures port probing.
type Probe struct {
	Timeout  string `toml:"timeout,omitempty" json:"timeout"`
	Endpoint string `toml:"endpoint,omitempty" json:"endpoint"`
}

// API configures the web API client.
type API struct {
	Timeout string `toml:"timeout,omitempty" json:"timeout"`
}

// Process holds extra executable patterns to match the game by.
type Process struct {
	Patterns []string `toml:"patterns,omitempty" json:"patterns"`
}

// Log configures the logger.
type Log struct {
	Level  string `toml:"level,omitempty" json:"level"`
	Format string `toml:"format,omitempty" json:"format"`
}

// env mirrors the settings that can be overridden with BNETDATA_* variables.
// Field names map to variable names word by word (ProbeTimeout is
// BNETDATA_PROBE_TIMEOUT).
type env struct {
	Home            string   `split_words:"true"`
	Host            string   `split_words:"true"`
	ProbeTimeout    string   `split_words:"true"`
	ProbeEndpoint   string   `split_words:"true"`
	APITimeout      string   `split_words:"true"`
	ProcessPatterns []string `split_words:"true"`
	LogLevel        string   `split_words:"true"`
	LogFormat       string   `split_words:"true"`
}

const envPrefix = "BNETDATA"

func loadEnv() (env, error) {
	var e env
	if err := envconfig.Process(envPrefix, &e); err != nil {
		return env{}, fmt.Errorf("reading environment: %w", err)
	}
	return e, nil
}

// configDirOverride is set by the --config-dir flag.
var configDirOverride string

// SetConfigDir allows the CLI to pass in the --config-dir value.
func SetConfigDir(dir string) {
	configDirOverride = dir
}

// Home returns the config directory path.
// Precedence: --config-dir flag / SetConfigDir > BNETDATA_HOME env > ~/.bnetdata
func Home() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if e, err := loadEnv(); err == nil && e.Home != "" {
		return e.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bnetdata")
	}
	return filepath.Join(home, ".bnetdata")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	return os.MkdirAll(Home(), 0o755)
}

// Load reads config.toml and returns a Config struct.
// If the file does not exist, it returns a zero-value Config (defaults).
func Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}
	return cfg, nil
}

// Save writes the Config struct back to config.toml.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o644)
}

// Keys lists the dot-separated keys that can be used with Get/Set, in
// display order.
var Keys = []string{
	"host",
	"probe.timeout",
	"probe.endpoint",
	"api.timeout",
	"process.patterns",
	"log.level",
	"log.format",
}

func validKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Get retrieves a single config value by dot-separated key.
func Get(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return getField(cfg, key)
}

// Set sets a single config value by dot-separated key.
func Set(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := validate(key, value); err != nil {
		return err
	}
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := setField(cfg, key, value); err != nil {
		return err
	}
	return Save(cfg)
}

func getField(cfg *Config, key string) (string, error) {
	switch key {
	case "host":
		return cfg.Host, nil
	case "probe.timeout":
		return cfg.Probe.Timeout, nil
	case "probe.endpoint":
		return cfg.Probe.Endpoint, nil
	case "api.timeout":
		return cfg.API.Timeout, nil
	case "process.patterns":
		return strings.Join(cfg.Process.Patterns, ","), nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.format":
		return cfg.Log.Format, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func setField(cfg *Config, key, value string) error {
	switch key {
	case "host":
		cfg.Host = value
	case "probe.timeout":
		cfg.Probe.Timeout = value
	case "probe.endpoint":
		cfg.Probe.Endpoint = value
	case "api.timeout":
		cfg.API.Timeout = value
	case "process.patterns":
		cfg.Process.Patterns = splitList(value)
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validate checks a value before it is stored. Empty values clear the key.
func validate(key, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case "probe.timeout", "api.timeout":
		_, err := parseDuration(key, value)
		return err
	case "log.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			return nil
		}
		return fmt.Errorf("invalid %s %q: want debug, info, warn or error", key, value)
	case "log.format":
		switch strings.ToLower(value) {
		case "auto", "text", "json":
			return nil
		}
		return fmt.Errorf("invalid %s %q: want auto, text or json", key, value)
	}
	return nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
