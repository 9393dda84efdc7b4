// Package config handles the claudetop config file and model pricing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all claudetop configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	TUI        TUIConfig        `toml:"tui"`
	Appearance AppearanceConfig `toml:"appearance"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir     string `toml:"data_dir,omitempty"`
	DefaultDays int    `toml:"default_days"` // 0 = all time
	DefaultSort string `toml:"default_sort"`
	Insights    bool   `toml:"insights"`
}

// TUIConfig holds dashboard behavior settings.
type TUIConfig struct {
	Watch      bool `toml:"watch"`
	DebounceMs int  `toml:"debounce_ms"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// PricingOverrides allows user-defined pricing for model substrings.
type PricingOverrides struct {
	Overrides map[string]PricingOverride `toml:"overrides,omitempty"`
}

// PricingOverride replaces individual per-million-token rates. Unset fields
// keep the built-in rate for the matching model.
type PricingOverride struct {
	InputPerMTok      *float64 `toml:"input_per_mtok,omitempty"`
	CacheWritePerMTok *float64 `toml:"cache_write_per_mtok,omitempty"`
	CacheReadPerMTok  *float64 `toml:"cache_read_per_mtok,omitempty"`
	OutputPerMTok     *float64 `toml:"output_per_mtok,omitempty"`
}

func (o PricingOverride) apply(base Pricing) Pricing {
	if o.InputPerMTok != nil {
		base.Input = *o.InputPerMTok
	}
	if o.CacheWritePerMTok != nil {
		base.CacheWrite = *o.CacheWritePerMTok
	}
	if o.CacheReadPerMTok != nil {
		base.CacheRead = *o.CacheReadPerMTok
	}
	if o.OutputPerMTok != nil {
		base.Output = *o.OutputPerMTok
	}
	return base
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultSort: "total",
			Insights:    true,
		},
		TUI: TUIConfig{
			DebounceMs: 2000,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "claudetop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "claudetop")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path on top of the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
