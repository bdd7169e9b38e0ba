package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, DefaultSingleUserID, cfg.Auth.DefaultUserID)
	assert.Equal(t, DefaultProxyHeader, cfg.Auth.ProxyHeader)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Audit.CleanupSchedule)
	assert.True(t, cfg.Tasks.Enabled)
}

func TestAuthMode_IsValid(t *testing.T) {
	for _, m := range []AuthMode{AuthModeNone, AuthModeLocal, AuthModeProxy} {
		assert.True(t, m.IsValid(), m)
	}
	for _, m := range []AuthMode{"", "locl", "None", "oauth"} {
		assert.False(t, m.IsValid(), m)
	}
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=lift dbname=lift")
	t.Setenv("AUTH_MODE", "proxy")
	t.Setenv("AUTH_PROXY_HEADER", "X-Auth-Request-User")
	t.Setenv("AUTH_LOCKOUT_DURATION", "1h")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=db user=lift dbname=lift", cfg.Database.DSN)
	assert.Equal(t, AuthModeProxy, cfg.Auth.Mode)
	assert.Equal(t, "X-Auth-Request-User", cfg.Auth.ProxyHeader)
	assert.Equal(t, time.Hour, cfg.Auth.LockoutDuration)
}
