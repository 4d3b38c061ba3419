package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "")
	t.Setenv("DB_LOG_LEVEL", "")

	cfg := FromEnv()

	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, logger.Warn, cfg.DB.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_LOG_LEVEL", "silent")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "")

	cfg := FromEnv()
	assert.Error(t, cfg.Validate())
}

func TestValidateDevelopmentSecretFallback(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("JWT_SECRET", "")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
}

func TestValidateRejectsBadCost(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("BCRYPT_COST", "40")

	cfg := FromEnv()
	assert.Error(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.GetDSN())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.0/24,")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.0/24"}, cfg.Server.TrustedProxies)

	ranges, err := cfg.Server.ProxyRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, "10.0.0.0/8", ranges[0].String())

	t.Setenv("TRUSTED_PROXIES", "10.0.0.1")
	assert.Error(t, FromEnv().Validate())
}
