package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays cfg with AUDIOKEEPER_* variables. Unset variables keep
// their current values.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
