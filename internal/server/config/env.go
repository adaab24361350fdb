package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/audiokeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// durationEnv holds variables that need conversion before they reach Config.
type durationEnv struct {
	AccessTokenExpireMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"-1"`
}

// envFilePath resolves the dotenv file: -f/-env-file, then ENV_FILE, then ".env".
func envFilePath() string {
	if p := flagx.EnvFileFlags(); p != "" {
		return p
	}
	if p := os.Getenv("ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// parseEnv loads the dotenv file into the process environment (existing
// variables win) and then copies every set variable into config.
// A missing dotenv file is ignored; an unreadable one or a malformed
// variable panics, as the JSON and flag stages do.
func parseEnv(config *Config) {
	if err := godotenv.Load(envFilePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}

	d, err := env.ParseAs[durationEnv]()
	if err != nil {
		panic(err)
	}
	if d.AccessTokenExpireMinutes >= 0 {
		config.AccessTokenValidityDuration = time.Duration(d.AccessTokenExpireMinutes) * time.Minute
	}
}
