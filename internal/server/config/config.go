// Package config handles configuration for the server component:
// defaults, JSON overlay, dotenv/environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/server/store"
)

// Config holds runtime settings for the AudioKeeper server.
type Config struct {
	HTTPAddr       string `env:"HTTP_ADDR"`
	GRPCHealthAddr string `env:"GRPC_HEALTH_ADDR"`

	DBDriver         string `env:"DB_DRIVER"`
	DatabaseDSN      string `env:"DATABASE_DSN"`
	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     int    `env:"POSTGRES_PORT"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDatabase string `env:"POSTGRES_DATABASE"`
	SQLitePath       string `env:"SQLITE_PATH"`

	SecretKey                   string `env:"SECRET_KEY"`
	JWTAlgorithm                string `env:"JWT_SIGNING_ALGORITHM"`
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int `env:"BCRYPT_COST"`

	S3Region       string `env:"S3_REGION"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`

	NATSURL      string `env:"NATS_URL"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadDefaults populates Config with development defaults.
// The secret key and S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCHealthAddr = ":50051"
	c.DBDriver = store.DriverSQLite
	c.PostgresHost = "localhost"
	c.PostgresPort = 5432
	c.PostgresUser = "postgres"
	c.PostgresPassword = "postgres"
	c.PostgresDatabase = "audiokeeper"
	c.SQLitePath = "audiokeeper.db"
	c.SecretKey = "secretKey"
	c.JWTAlgorithm = "HS256"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.BcryptCost = 10
	c.S3Region = "us-east-1"
	c.S3AccessKey = "minioadmin"
	c.S3SecretKey = "minioadmin"
	c.S3Bucket = "audiokeeper"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.LogLevel = "info"
	c.CORSAllowedOrigins = []string{"*"}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the .env file and environment, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// DSN returns DatabaseDSN when set, otherwise a DSN assembled for DBDriver.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	if c.DBDriver == store.DriverPostgres {
		return store.PostgresDSN(c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDatabase)
	}
	return store.SQLiteDSN(c.SQLitePath)
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DBDriver != store.DriverPostgres && c.DBDriver != store.DriverSQLite {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return errors.New("access token lifetime must be positive")
	}
	return nil
}
