// Package config loads process-wide settings for the API server. Values are
// read once at startup and passed explicitly into the components that need
// them.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-messagely/pkg/database"
	"github.com/ovaphlow/pitchfork/service-messagely/pkg/utilities"
)

type Config struct {
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:"0.0.0.0:8431"`
	SecretKey string `envconfig:"SECRET_KEY" required:"true"`
	// BcryptWorkFactor is the bcrypt cost used for new password hashes.
	BcryptWorkFactor int `envconfig:"BCRYPT_WORK_FACTOR" default:"12"`
	// TokenTTL of zero issues tokens without an expiry claim.
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"0s"`
	SnowflakeNode   int64         `envconfig:"SNOWFLAKE_NODE" default:"1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	Database database.Config `ignored:"true"`
	Log      utilities.Config `ignored:"true"`
}

// Load reads the app, database and logger settings from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("app config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	db, err := database.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Database = db

	lg, err := utilities.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Log = lg
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must not be empty")
	}
	if c.BcryptWorkFactor < bcrypt.MinCost || c.BcryptWorkFactor > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_WORK_FACTOR must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptWorkFactor)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative, got %s", c.TokenTTL)
	}
	return nil
}
