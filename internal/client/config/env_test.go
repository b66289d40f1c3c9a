package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DB_PATH", "APP_NAME", "DEFAULT_ORGANIZATION", "DEFAULT_PURPOSE",
		"CONSENT_VALIDITY", "SWEEP_ON_LOAD", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(EnvPrefix+k, "")
	}
}

func Test_parseEnv(t *testing.T) {
	t.Run("overlays set variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONSENTVAULT_DB_PATH", "/tmp/env.db")
		t.Setenv("CONSENTVAULT_DEFAULT_ORGANIZATION", "Org A")
		t.Setenv("CONSENTVAULT_CONSENT_VALIDITY", "72h")
		t.Setenv("CONSENTVAULT_SWEEP_ON_LOAD", "true")
		t.Setenv("CONSENTVAULT_LOG_FORMAT", "json")

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, "/tmp/env.db", cfg.DBPath)
		assert.Equal(t, "Org A", cfg.DefaultOrganization)
		assert.Equal(t, 72*time.Hour, cfg.ConsentValidity)
		assert.True(t, cfg.SweepOnLoad)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "pharma_blockchain", cfg.AppName)
	})

	t.Run("empty variables are ignored", func(t *testing.T) {
		clearEnv(t)
		cfg := &Config{AppName: "kept", ConsentValidity: time.Minute, SweepOnLoad: true}
		parseEnv(cfg)

		assert.Equal(t, "kept", cfg.AppName)
		assert.Equal(t, time.Minute, cfg.ConsentValidity)
		assert.True(t, cfg.SweepOnLoad)
	})

	t.Run("bad duration → panics", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONSENTVAULT_CONSENT_VALIDITY", "a year")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("bad bool → panics", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONSENTVAULT_SWEEP_ON_LOAD", "sometimes")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}

func TestLoadConfig_DotEnvAndPrecedence(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONSENTVAULT_CONFIG", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("CONSENTVAULT_APP_NAME=from_dotenv\nCONSENTVAULT_LOG_LEVEL=info\n"), 0o600))
	t.Chdir(dir)
	// godotenv never overrides variables that exist, even empty ones
	for _, k := range []string{"CONSENTVAULT_APP_NAME", "CONSENTVAULT_LOG_LEVEL"} {
		require.NoError(t, os.Unsetenv(k))
	}

	os.Args = []string{"testbin", "-l", "error"}
	cfg := LoadConfig()

	assert.Equal(t, "from_dotenv", cfg.AppName)
	// flags win over the environment
	assert.Equal(t, "error", cfg.LogLevel)
}

func Test_loadDotEnv(t *testing.T) {
	t.Run("missing file is silent", func(t *testing.T) {
		t.Chdir(t.TempDir())

		var buf bytes.Buffer
		loadDotEnv(&buf)
		assert.Empty(t, buf.String())
	})

	t.Run("malformed file is reported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o600))
		t.Chdir(dir)

		var buf bytes.Buffer
		loadDotEnv(&buf)
		assert.Contains(t, buf.String(), "warning: ignoring .env")
	})
}
