package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "DB_PATH", "UPLOAD_DIR", "ADMIN_EMAIL", "SESSION_SECRET", "SESSION_TTL",
	"DEFAULT_LANG", "MAX_UPLOAD_MB", "BCRYPT_COST", "LOG_LEVEL", "CATALOG_FILE",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "data/ncps.db", cfg.DBPath)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "admin@ncps.local", cfg.AdminEmail)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "bn", cfg.DefaultLang)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.CatalogFile)

	assert.True(t, cfg.SessionSecretGenerated)
	assert.GreaterOrEqual(t, len(cfg.SessionSecret), minSecretLen)
}

func TestLoad_GeneratedSecretsDiffer(t *testing.T) {
	clearEnv(t)

	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionSecret, b.SessionSecret)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("ADMIN_EMAIL", "  Boss@Example.com ")
	t.Setenv("SESSION_SECRET", "0123456789abcdef")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DEFAULT_LANG", "en")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_FILE", "catalog.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "boss@example.com", cfg.AdminEmail)
	assert.Equal(t, "0123456789abcdef", cfg.SessionSecret)
	assert.False(t, cfg.SessionSecretGenerated)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "en", cfg.DefaultLang)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "catalog.json", cfg.CatalogFile)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "abc"},
		{"PORT", "70000"},
		{"SESSION_TTL", "forever"},
		{"SESSION_TTL", "-1h"},
		{"SESSION_SECRET", "too-short"},
		{"MAX_UPLOAD_MB", "0"},
		{"BCRYPT_COST", "3"},
		{"BCRYPT_COST", "32"},
		{"LOG_LEVEL", "loud"},
		{"DEFAULT_LANG", "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
