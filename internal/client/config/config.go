package config

import "time"

// Config holds runtime settings for the AudioKeeper CLI.
type Config struct {
	// ServerURL is the base URL of the HTTP API, e.g. http://127.0.0.1:8080.
	ServerURL string `env:"AUDIOKEEPER_SERVER_URL"`
	// OnlineCheckInterval is how often the client probes /health.
	OnlineCheckInterval time.Duration `env:"AUDIOKEEPER_ONLINE_CHECK_INTERVAL"`
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig applies defaults, then the JSON file, the environment and
// finally command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
