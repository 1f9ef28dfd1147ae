// Package config reads the server's settings from the environment.
//
// Every value has a default, so a bare `go run ./cmd/server` works. main
// loads a .env file first (if present), then calls Load once; the resulting
// Config is passed down by value and never changes afterwards.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port      int
	DBPath    string
	UploadDir string

	// AdminEmail identifies the single administrator account.
	AdminEmail string

	SessionSecret string
	// SessionSecretGenerated is true when SESSION_SECRET was unset and a
	// random secret was made up; sessions then end with the process.
	SessionSecretGenerated bool
	SessionTTL             time.Duration

	DefaultLang    string
	MaxUploadBytes int64
	BcryptCost     int
	LogLevel       slog.Level

	// CatalogFile optionally replaces the built-in service catalog.
	CatalogFile string
}

const minSecretLen = 16

func Load() (Config, error) {
	cfg := Config{
		DBPath:      getEnv("DB_PATH", "data/ncps.db"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		AdminEmail:  strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", "admin@ncps.local"))),
		DefaultLang: getEnv("DEFAULT_LANG", "bn"),
		CatalogFile: getEnv("CATALOG_FILE", ""),
	}

	var err error
	if cfg.Port, err = parseInt("PORT", "3000"); err != nil {
		return Config{}, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}

	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("config: SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("config: SESSION_TTL must be positive")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		if cfg.SessionSecret, err = randomSecret(); err != nil {
			return Config{}, err
		}
		cfg.SessionSecretGenerated = true
	} else if len(cfg.SessionSecret) < minSecretLen {
		return Config{}, fmt.Errorf("config: SESSION_SECRET must be at least %d characters", minSecretLen)
	}

	mb, err := parseInt("MAX_UPLOAD_MB", "10")
	if err != nil {
		return Config{}, err
	}
	if mb < 1 {
		return Config{}, fmt.Errorf("config: MAX_UPLOAD_MB must be at least 1")
	}
	cfg.MaxUploadBytes = int64(mb) << 20

	if cfg.BcryptCost, err = parseInt("BCRYPT_COST", "12"); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	switch cfg.DefaultLang {
	case "bn", "en":
	default:
		return Config{}, fmt.Errorf("config: DEFAULT_LANG %q is not one of bn, en", cfg.DefaultLang)
	}

	return cfg, nil
}

// getEnv returns the variable's value, or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number", key, raw)
	}
	return n, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
