package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/flagx"
	"github.com/dmitrijs2005/audiokeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept strings such as "30m" as well as integer nanoseconds. Only fields
// present in the file override the current Config.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	GRPCHealthAddr              *string         `json:"grpc_health_addr"`
	DBDriver                    *string         `json:"db_driver"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SQLitePath                  *string         `json:"sqlite_path"`
	SecretKey                   *string         `json:"secret_key"`
	JWTAlgorithm                *string         `json:"jwt_signing_algorithm"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	S3Region                    *string         `json:"s3_region"`
	S3AccessKey                 *string         `json:"s3_access_key"`
	S3SecretKey                 *string         `json:"s3_secret_key"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	NATSURL                     *string         `json:"nats_url"`
	OTELEndpoint                *string         `json:"otel_endpoint"`
	LogLevel                    *string         `json:"log_level"`
	CORSAllowedOrigins          []string        `json:"cors_allowed_origins"`
}

// parseJson loads configuration values from the file named by -c/-config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DBDriver, c.DBDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.NATSURL, c.NATSURL)
	setString(&config.OTELEndpoint, c.OTELEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
