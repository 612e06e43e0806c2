package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"storage_backend":  "postgres",
		"storage_dsn":      "postgres://db/tripti",
		"session_backend":  "redis",
		"session_dsn":      "redis://cache:6379/1",
		"session_ttl":      "30m",
		"secret_key":       "my_secret_key",
		"monthly_capacity": 500,
		"otp_ttl":          int64(2 * time.Minute),
		"confirm_delay":    "0s",
		"log_level":        "warn",
		"timezone":         "Asia/Dhaka",
		"audit_dir":        "/tmp/audit",
		"s3_bucket":        "bucket",
		"s3_region":        "region",
		"s3_base_endpoint": "base_endpoint",
		"s3_access_key":    "ak",
		"s3_secret_key":    "sk",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "postgres", cfg.StorageBackend)
		assert.Equal(t, "postgres://db/tripti", cfg.StorageDSN)
		assert.Equal(t, "redis", cfg.SessionBackend)
		assert.Equal(t, "redis://cache:6379/1", cfg.SessionDSN)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 500, cfg.MonthlyCapacity)
		assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "Asia/Dhaka", cfg.Timezone)
		assert.Equal(t, "/tmp/audit", cfg.AuditDir)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "ak", cfg.S3AccessKey)
		assert.Equal(t, "sk", cfg.S3SecretKey)
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "error"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, "tripti.db", cfg.StorageDSN)
		assert.Equal(t, 400, cfg.MonthlyCapacity)
		assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		parseJson(cfg)

		assert.Equal(t, want, *cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "missing.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
