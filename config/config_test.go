package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadJSONConfig_GroupedSections(t *testing.T) {
	path := writeJSON(t, `{
		"app": {"AppPort": "9090", "OwnerHeader": "X-OWNER", "AllowedOrigins": ["https://a.example"]},
		"points": {"Rate": 3},
		"database": {"DBDriver": "postgres", "DBHost": "db", "DBName": "points"},
		"redis": {"RedisEnabled": true, "RedisPort": 6380},
		"log": {"Level": "debug", "Compress": true}
	}`)

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "X-OWNER", c.OwnerHeader)
	assert.Equal(t, []string{"https://a.example"}, c.AllowedOrigins)
	assert.Equal(t, 3, c.PointRate)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "db", c.DBHost)
	assert.Equal(t, "points", c.DBName)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogCompress)
}

func TestLoadJSONConfig_FlatKeys(t *testing.T) {
	path := writeJSON(t, `{"AppPort": "7070", "PointRate": 2, "GinLogPath": "logs/gin.log"}`)

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))
	assert.Equal(t, "7070", c.AppPort)
	assert.Equal(t, 2, c.PointRate)
	assert.Equal(t, "logs/gin.log", c.GinPath)
}

func TestLoadJSONConfig_MissingFileIsIgnored(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"), &c))
	assert.Equal(t, AppConfig{}, c)
}

func TestLoadJSONConfig_InvalidJSON(t *testing.T) {
	var c AppConfig
	assert.Error(t, loadJSONConfig(writeJSON(t, `{"AppPort":`), &c))
}

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "X-USER-ID", c.OwnerHeader)
	assert.Equal(t, 1, c.PointRate)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.False(t, c.RedisEnabled)

	pg := AppConfig{DBDriver: "postgres"}
	applyDefaults(&pg)
	assert.Equal(t, "5432", pg.DBPort)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("POINT_RATE", "5")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("OWNER_HEADER", "X-MEMBER")

	c := AppConfig{PointRate: 1, DBDriver: "mysql"}
	applyEnvOverrides(&c)

	assert.Equal(t, 5, c.PointRate)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, "X-MEMBER", c.OwnerHeader)
}

func TestNormalize_PointRate(t *testing.T) {
	for _, raw := range []string{"0", "-5"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("POINT_RATE", raw)

			c := AppConfig{}
			applyDefaults(&c)
			applyEnvOverrides(&c)
			normalize(&c)

			assert.Equal(t, 1, c.PointRate)
		})
	}

	c := AppConfig{PointRate: 3, RateLimitPerMinute: -1}
	normalize(&c)
	assert.Equal(t, 3, c.PointRate)
	assert.Equal(t, 120, c.RateLimitPerMinute)
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(AppConfig{DBDriver: driver, DBName: "membership"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, toGormLogLevel("debug"))
	assert.Equal(t, logger.Warn, toGormLogLevel("info"))
	assert.Equal(t, logger.Error, toGormLogLevel("error"))
	assert.Equal(t, logger.Silent, toGormLogLevel("silent"))
}
