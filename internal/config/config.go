// Package config reads server settings from COLORWAY_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const prefix = "COLORWAY_"

// Config holds everything serve needs.
type Config struct {
	Addr            string
	DBDriver        string
	DBDSN           string
	NATSURL         string
	StartBankroll   decimal.Decimal
	KeyringService  string
	KeyringFallback string
	HouseAccount    string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		DBDriver:        "sqlite",
		DBDSN:           "colorway.db",
		StartBankroll:   decimal.NewFromInt(300),
		KeyringService:  "colorway-poker",
		KeyringFallback: DefaultFallbackPath(),
		HouseAccount:    "house",
	}
}

// DefaultFallbackPath is secrets.json under the user config directory, or
// under the working directory when the user has none.
func DefaultFallbackPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".colorway", "secrets.json")
	}
	return filepath.Join(dir, "colorway-poker", "secrets.json")
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then builds a Config from it. An empty
// envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, starting at Defaults.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()
	get := func(key string, dst *string) {
		if v, ok := lookup(prefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	get("ADDR", &cfg.Addr)
	get("DB_DRIVER", &cfg.DBDriver)
	get("DB_DSN", &cfg.DBDSN)
	get("NATS_URL", &cfg.NATSURL)
	get("KEYRING_SERVICE", &cfg.KeyringService)
	get("KEYRING_FALLBACK", &cfg.KeyringFallback)
	get("HOUSE_ACCOUNT", &cfg.HouseAccount)

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("config: %sDB_DRIVER must be sqlite or postgres, got %q", prefix, cfg.DBDriver)
	}

	var bankroll string
	get("START_BANKROLL", &bankroll)
	if bankroll != "" {
		d, err := decimal.NewFromString(bankroll)
		if err != nil {
			return Config{}, fmt.Errorf("config: %sSTART_BANKROLL: %w", prefix, err)
		}
		if !d.IsPositive() {
			return Config{}, fmt.Errorf("config: %sSTART_BANKROLL must be positive, got %s", prefix, d)
		}
		cfg.StartBankroll = d
	}
	return cfg, nil
}
