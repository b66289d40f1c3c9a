package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the consent vault CLI.
//
// Fields:
//   - DBPath: location of the encrypted SQLite vault (":memory:" for an
//     ephemeral session).
//   - AppName: prefix of the storage keys the identity and ledger live under.
//   - DefaultOrganization, DefaultPurpose: prefilled values of a new consent.
//   - ConsentValidity: how long an enrolled consent stays valid; zero means
//     no expiration date.
//   - SweepOnLoad: expire overdue consents right after the vault is loaded.
//   - LogLevel, LogFormat: slog level name and "text" or "json".
type Config struct {
	DBPath              string
	AppName             string
	DefaultOrganization string
	DefaultPurpose      string
	ConsentValidity     time.Duration
	SweepOnLoad         bool
	LogLevel            string
	LogFormat           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = defaultDBPath()
	c.AppName = "pharma_blockchain"
	c.DefaultOrganization = "MedSecure Clinical Partners"
	c.DefaultPurpose = "Clinical Research"
	c.ConsentValidity = 365 * 24 * time.Hour
	c.SweepOnLoad = false
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "consentvault.db"
	}
	return filepath.Join(dir, "consentvault", "vault.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file, the environment (a .env file included) and command-line
// flags, each if present. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	loadDotEnv(os.Stderr)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
