package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "CONSENTVAULT_"

// loadDotEnv reads a .env file from the working directory into the process
// environment. Variables already set win. A missing file is fine; a file
// that cannot be parsed is reported on w and skipped.
func loadDotEnv(w io.Writer) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "warning: ignoring .env: %v\n", err)
	}
}

// parseEnv overlays Config with CONSENTVAULT_* variables:
//
//	CONSENTVAULT_DB_PATH, CONSENTVAULT_APP_NAME, CONSENTVAULT_DEFAULT_ORGANIZATION,
//	CONSENTVAULT_DEFAULT_PURPOSE, CONSENTVAULT_CONSENT_VALIDITY (e.g. "720h"),
//	CONSENTVAULT_SWEEP_ON_LOAD (true/false), CONSENTVAULT_LOG_LEVEL,
//	CONSENTVAULT_LOG_FORMAT
//
// Empty variables are ignored. Panics on values that do not parse.
func parseEnv(cfg *Config) {
	setString(&cfg.DBPath, os.Getenv(EnvPrefix+"DB_PATH"))
	setString(&cfg.AppName, os.Getenv(EnvPrefix+"APP_NAME"))
	setString(&cfg.DefaultOrganization, os.Getenv(EnvPrefix+"DEFAULT_ORGANIZATION"))
	setString(&cfg.DefaultPurpose, os.Getenv(EnvPrefix+"DEFAULT_PURPOSE"))
	setString(&cfg.LogLevel, os.Getenv(EnvPrefix+"LOG_LEVEL"))
	setString(&cfg.LogFormat, os.Getenv(EnvPrefix+"LOG_FORMAT"))

	if v := os.Getenv(EnvPrefix + "CONSENT_VALIDITY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.ConsentValidity = d
	}
	if v := os.Getenv(EnvPrefix + "SWEEP_ON_LOAD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.SweepOnLoad = b
	}
}
