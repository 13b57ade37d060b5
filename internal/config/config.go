// Package config loads pinned's config.toml, .env and PINNED_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"pinned/internal/api"
	"pinned/internal/db"
	"pinned/internal/models"
)

// Environment overrides
const (
	EnvAPIURL   = "PINNED_API_URL"
	EnvModel    = "PINNED_MODEL"
	EnvLogLevel = "PINNED_LOG_LEVEL"
	EnvLogFile  = "PINNED_LOG_FILE"
	EnvDBPath   = "PINNED_DB"
	EnvAnimate  = "PINNED_ANIMATE"
)

type Config struct {
	APIURL       string   `toml:"api_url"`
	DefaultModel string   `toml:"default_model"`
	DBPath       string   `toml:"db_path,omitempty"`
	UI           UI       `toml:"ui"`
	Features     Features `toml:"features"`
	Log          Log      `toml:"log"`
}

type UI struct {
	Animate       bool   `toml:"animate"`
	TypingDelayMS int    `toml:"typing_delay_ms"`
	ExportDir     string `toml:"export_dir,omitempty"`
}

// Features switch the optional parts of the interface on and off
type Features struct {
	SoundEffects  bool `toml:"sound_effects"`
	SettingsPanel bool `toml:"settings_panel"`
	Export        bool `toml:"export"`
	DesktopNotify bool `toml:"desktop_notify"`
}

type Log struct {
	Path  string `toml:"path,omitempty"`
	Level string `toml:"level"`
}

// Profiles are preset feature sets: a bare client, one with the settings panel, and everything
var Profiles = map[string]Features{
	"basic":    {},
	"enhanced": {SoundEffects: true, SettingsPanel: true},
	"full":     {SoundEffects: true, SettingsPanel: true, Export: true, DesktopNotify: true},
}

func Default() *Config {
	return &Config{
		APIURL:       api.DefaultBaseURL,
		DefaultModel: models.DefaultModelAlias,
		UI: UI{
			Animate:       true,
			TypingDelayMS: 10,
		},
		Features: Profiles["full"],
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPath is config.toml next to the preference database
func DefaultPath() (string, error) {
	dir, err := db.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads .env from the working directory, then the TOML file at path (the default
// path when empty), then applies environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if b, ok := parseBool(os.Getenv(EnvAnimate)); ok {
		c.UI.Animate = b
	}
}

func fillDefaults(cfg *Config) {
	defaults := Default()
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url %q must be an http(s) URL", c.APIURL))
	}
	if c.UI.TypingDelayMS < 0 || c.UI.TypingDelayMS > 1000 {
		errs = append(errs, fmt.Errorf("ui.typing_delay_ms must be between 0 and 1000, got %d", c.UI.TypingDelayMS))
	}
	level := strings.ToLower(c.Log.Level)
	valid := false
	for _, l := range logLevels {
		if l == level {
			valid = true
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}
	return errors.Join(errs...)
}

// TypingDelay is the per-rune reveal delay, zero when animation is off
func (c *Config) TypingDelay() time.Duration {
	if !c.UI.Animate {
		return 0
	}
	return time.Duration(c.UI.TypingDelayMS) * time.Millisecond
}

// ApplyProfile replaces the feature flags with a named profile
func (c *Config) ApplyProfile(name string) error {
	f, ok := Profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	c.Features = f
	return nil
}

// Save writes cfg as TOML with owner-only permissions
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# pinned configuration")
	fmt.Fprintln(file, "")
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// String renders the effective config for `pinned config`
func (c *Config) String() string {
	var sb strings.Builder
	_ = toml.NewEncoder(&sb).Encode(c)
	return sb.String()
}

func parseBool(s string) (bool, bool) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return b, err == nil
}
