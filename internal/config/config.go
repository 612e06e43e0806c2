// Package config assembles runtime settings from defaults, an optional .env
// file and TRIPTI_* environment variables, an optional JSON file and
// command-line flags, in that order of increasing precedence.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
)

// Config holds runtime settings for the tripti binary.
//
// Fields:
//   - StorageBackend / StorageDSN: durable scope (memory, sqlite, postgres, redis).
//   - SessionBackend / SessionDSN / SessionTTL: session scope and its lifetime.
//   - SecretKey: HMAC secret for the session marker (HS256). Override in prod.
//   - MonthlyCapacity: tokens the kitchen can serve per month.
//   - OTPTTL: lifetime of verification codes.
//   - ConfirmDelay: simulated pause before a signup is stored.
//   - Timezone: IANA zone weeks and months are evaluated in, or "Local".
//   - AuditDir / S3*: audit export destination. A non-empty S3Bucket wins.
type Config struct {
	StorageBackend  string
	StorageDSN      string
	SessionBackend  string
	SessionDSN      string
	SessionTTL      time.Duration
	SecretKey       string
	MonthlyCapacity int
	OTPTTL          time.Duration
	ConfirmDelay    time.Duration
	LogLevel        string
	Timezone        string
	AuditDir        string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3AccessKey     string
	S3SecretKey     string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden outside of dev.
func (c *Config) LoadDefaults() {
	c.StorageBackend = "sqlite"
	c.StorageDSN = "tripti.db"
	c.SessionBackend = "memory"
	c.SessionDSN = ""
	c.SessionTTL = 12 * time.Hour
	c.SecretKey = "secretKey"
	c.MonthlyCapacity = 400
	c.OTPTTL = 10 * time.Minute
	c.ConfirmDelay = 1 * time.Second
	c.LogLevel = "info"
	c.Timezone = "Local"
	c.AuditDir = "audit"
	c.S3Region = "us-east-1"
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate rejects settings every layer accepts syntactically but the
// application cannot run with.
func (c *Config) Validate() error {
	if c.MonthlyCapacity <= 0 {
		return fmt.Errorf("%w: monthly capacity must be positive, got %d", common.ErrValidation, c.MonthlyCapacity)
	}
	switch c.SessionBackend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("%w: session backend must be memory or redis, got %q", common.ErrValidation, c.SessionBackend)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
