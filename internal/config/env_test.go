package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("TRIPTI_STORAGE_BACKEND", "postgres")
	t.Setenv("TRIPTI_STORAGE_DSN", "postgres://localhost/tripti")
	t.Setenv("TRIPTI_SESSION_BACKEND", "redis")
	t.Setenv("TRIPTI_SESSION_DSN", "redis://localhost:6379/0")
	t.Setenv("TRIPTI_SESSION_TTL", "2h")
	t.Setenv("TRIPTI_OTP_TTL", "5m")
	t.Setenv("TRIPTI_MONTHLY_CAPACITY", "350")
	t.Setenv("TRIPTI_S3_BUCKET", "audit-bucket")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, "postgres", c.StorageBackend)
	assert.Equal(t, "postgres://localhost/tripti", c.StorageDSN)
	assert.Equal(t, "redis", c.SessionBackend)
	assert.Equal(t, "redis://localhost:6379/0", c.SessionDSN)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.Equal(t, 5*time.Minute, c.OTPTTL)
	assert.Equal(t, 350, c.MonthlyCapacity)
	assert.Equal(t, "audit-bucket", c.S3Bucket)
	// untouched
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseEnv_MalformedValuesPanic(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Run("int", func(t *testing.T) {
		t.Setenv("TRIPTI_MONTHLY_CAPACITY", "lots")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("TRIPTI_OTP_TTL", "soon")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}

func TestParseEnv_EnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	const key = "TRIPTI_AUDIT_DIR"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=/var/tripti/audit\n"), 0o600))
	os.Args = []string{"testbin", "-env", path}

	c := &Config{}
	parseEnv(c)
	assert.Equal(t, "/var/tripti/audit", c.AuditDir)
}

func TestParseEnv_EnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Setenv("TRIPTI_TIMEZONE", "Asia/Dhaka")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TRIPTI_TIMEZONE=UTC\n"), 0o600))
	os.Args = []string{"testbin", "-env", path}

	c := &Config{}
	parseEnv(c)
	assert.Equal(t, "Asia/Dhaka", c.Timezone)
}

func TestParseEnv_MissingEnvFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "nope.env")}

	require.Panics(t, func() { parseEnv(&Config{}) })
}
