// Package config loads devbolt client options from environment variables.
//
// Variables (all optional):
//   - DEVBOLT_CONFIG_PATH: path to the flags file (default locations are
//     searched when unset).
//   - DEVBOLT_LOG_LEVEL: minimum log level (default "warn").
//   - DEVBOLT_AUTO_RELOAD: watch the flags file for changes (default true).
//   - DEVBOLT_STRICT: treat unknown flag names as errors (default false).
//   - DEVBOLT_RELOAD_DEBOUNCE: quiet period after a file change before
//     reloading (default "500ms", must be > 0).
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options holds the environment-derived client settings.
type Options struct {
	ConfigPath     string        `env:"DEVBOLT_CONFIG_PATH"`
	LogLevel       string        `env:"DEVBOLT_LOG_LEVEL" envDefault:"warn"`
	AutoReload     bool          `env:"DEVBOLT_AUTO_RELOAD" envDefault:"true"`
	Strict         bool          `env:"DEVBOLT_STRICT" envDefault:"false"`
	ReloadDebounce time.Duration `env:"DEVBOLT_RELOAD_DEBOUNCE" envDefault:"500ms"`
}

// Load reads options from the environment, applying defaults.
func Load() (Options, error) {
	opts, err := env.ParseAs[Options]()
	if err != nil {
		return Options{}, err
	}
	if opts.ReloadDebounce <= 0 {
		return Options{}, errors.New("DEVBOLT_RELOAD_DEBOUNCE must be > 0")
	}
	return opts, nil
}
