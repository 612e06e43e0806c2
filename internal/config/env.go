package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tripti/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays TRIPTI_* environment variables onto config.
//
// The file named by -env is loaded first and must exist. Without the flag a
// .env in the working directory is loaded when present. Variables already
// set in the process environment are never overwritten by the file.
// Malformed numbers or durations panic, like the other config sources.
func parseEnv(config *Config) {
	loadEnvFile(flagx.EnvFileFlags())

	config.StorageBackend = getEnv("TRIPTI_STORAGE_BACKEND", config.StorageBackend)
	config.StorageDSN = getEnv("TRIPTI_STORAGE_DSN", config.StorageDSN)
	config.SessionBackend = getEnv("TRIPTI_SESSION_BACKEND", config.SessionBackend)
	config.SessionDSN = getEnv("TRIPTI_SESSION_DSN", config.SessionDSN)
	config.SessionTTL = getDuration("TRIPTI_SESSION_TTL", config.SessionTTL)
	config.SecretKey = getEnv("TRIPTI_SECRET_KEY", config.SecretKey)
	config.MonthlyCapacity = getInt("TRIPTI_MONTHLY_CAPACITY", config.MonthlyCapacity)
	config.OTPTTL = getDuration("TRIPTI_OTP_TTL", config.OTPTTL)
	config.ConfirmDelay = getDuration("TRIPTI_CONFIRM_DELAY", config.ConfirmDelay)
	config.LogLevel = getEnv("TRIPTI_LOG_LEVEL", config.LogLevel)
	config.Timezone = getEnv("TRIPTI_TIMEZONE", config.Timezone)
	config.AuditDir = getEnv("TRIPTI_AUDIT_DIR", config.AuditDir)
	config.S3Bucket = getEnv("TRIPTI_S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("TRIPTI_S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("TRIPTI_S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.S3AccessKey = getEnv("TRIPTI_S3_ACCESS_KEY", config.S3AccessKey)
	config.S3SecretKey = getEnv("TRIPTI_S3_SECRET_KEY", config.S3SecretKey)
}

func loadEnvFile(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}

	err := godotenv.Load(defaultEnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return d
}
