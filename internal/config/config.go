// Package config loads user configuration from <configDir>/config.yaml and
// DIARYKEEP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/diarykeep/internal/constants"
)

type NativeConfig struct {
	// HostDir holds the native host lockfile. Empty uses the host's default
	// location.
	HostDir string `mapstructure:"host_dir"`
}

type WidgetConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type AutosaveConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	// Storage is a SQLite file path or a PostgreSQL connection string.
	Storage  string         `mapstructure:"storage"`
	Debug    bool           `mapstructure:"debug"`
	Timezone string         `mapstructure:"timezone"`
	Native   NativeConfig   `mapstructure:"native"`
	Widget   WidgetConfig   `mapstructure:"widget"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
}

func Default() Config {
	return Config{
		Storage: constants.DefaultConfigPath,
		Widget: WidgetConfig{
			Debounce: constants.DefaultWidgetDebounce,
		},
		Autosave: AutosaveConfig{
			Interval: constants.DefaultAutosaveEvery,
		},
	}
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, constants.AppName), nil
}

// Load reads path, or <Dir()>/config.yaml when path is empty. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := Dir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("native.host_dir", cfg.Native.HostDir)
	v.SetDefault("widget.debounce", cfg.Widget.Debounce)
	v.SetDefault("autosave.interval", cfg.Autosave.Interval)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	cfg.Storage = ExpandHome(cfg.Storage)
	cfg.Native.HostDir = ExpandHome(cfg.Native.HostDir)
	if cfg.Widget.Debounce <= 0 {
		cfg.Widget.Debounce = constants.DefaultWidgetDebounce
	}
	if cfg.Autosave.Interval <= 0 {
		cfg.Autosave.Interval = constants.DefaultAutosaveEvery
	}
	return cfg, nil
}

// Location returns the configured timezone, falling back to time.Local.
func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
