package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.StorageBackend)
	assert.Equal(t, "tripti.db", c.StorageDSN)
	assert.Equal(t, "memory", c.SessionBackend)
	assert.Equal(t, 12*time.Hour, c.SessionTTL)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 400, c.MonthlyCapacity)
	assert.Equal(t, 10*time.Minute, c.OTPTTL)
	assert.Equal(t, 1*time.Second, c.ConfirmDelay)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "Local", c.Timezone)
	assert.Equal(t, "audit", c.AuditDir)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Empty(t, c.S3Bucket)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"storage_dsn":      "from-json.db",
		"monthly_capacity": 250,
	})
	t.Setenv("TRIPTI_STORAGE_DSN", "from-env.db")
	t.Setenv("TRIPTI_LOG_LEVEL", "debug")
	t.Setenv("TRIPTI_MONTHLY_CAPACITY", "300")

	os.Args = []string{"testbin", "-c", path, "-capacity", "120"}

	c := LoadConfig()
	assert.Equal(t, "from-json.db", c.StorageDSN)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 120, c.MonthlyCapacity)
}

func TestLocation(t *testing.T) {
	c := &Config{Timezone: "Local"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.Timezone = "UTC"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	c.Timezone = "Mars/Olympus"
	_, err = c.Location()
	require.ErrorContains(t, err, "Mars/Olympus")
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, c.Validate())

	c.SessionBackend = "redis"
	require.NoError(t, c.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero capacity", func(c *Config) { c.MonthlyCapacity = 0 }, "got 0"},
		{"negative capacity", func(c *Config) { c.MonthlyCapacity = -1 }, "got -1"},
		{"sqlite session", func(c *Config) { c.SessionBackend = "sqlite" }, `"sqlite"`},
		{"postgres session", func(c *Config) { c.SessionBackend = "postgres" }, `"postgres"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			require.ErrorIs(t, err, common.ErrValidation)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
