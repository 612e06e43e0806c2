package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tripti/internal/flagx"
	"github.com/dmitrijs2005/tripti/internal/timex"
)

// JsonConfig is the on-disk shape of a JSON config file. Durations accept
// either strings such as "10m" or integer nanoseconds.
type JsonConfig struct {
	StorageBackend  string         `json:"storage_backend"`
	StorageDSN      string         `json:"storage_dsn"`
	SessionBackend  string         `json:"session_backend"`
	SessionDSN      string         `json:"session_dsn"`
	SessionTTL      timex.Duration `json:"session_ttl"`
	SecretKey       string         `json:"secret_key"`
	MonthlyCapacity int            `json:"monthly_capacity"`
	OTPTTL          timex.Duration `json:"otp_ttl"`
	ConfirmDelay    timex.Duration `json:"confirm_delay"`
	LogLevel        string         `json:"log_level"`
	Timezone        string         `json:"timezone"`
	AuditDir        string         `json:"audit_dir"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
}

// parseJson loads the file named by -c or -config into config. Keys that
// are absent (or zero) keep the value from earlier sources. A missing or
// malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageDSN, c.StorageDSN)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.SessionDSN, c.SessionDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.Timezone, c.Timezone)
	setString(&config.AuditDir, c.AuditDir)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)

	if c.MonthlyCapacity != 0 {
		config.MonthlyCapacity = c.MonthlyCapacity
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.OTPTTL.Duration != 0 {
		config.OTPTTL = c.OTPTTL.Duration
	}
	if c.ConfirmDelay.Duration != 0 {
		config.ConfirmDelay = c.ConfirmDelay.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
