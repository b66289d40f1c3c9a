package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/consentvault/internal/flagx"
	"github.com/dmitrijs2005/consentvault/internal/timex"
	"gopkg.in/yaml.v2"
)

// FileConfig is a DTO used exclusively for unmarshalling the config file.
// ConsentValidity relies on timex.Duration so it may be written either as a
// string like "8760h" or as integer nanoseconds.
type FileConfig struct {
	DBPath              string          `json:"db_path" yaml:"db_path"`
	AppName             string          `json:"app_name" yaml:"app_name"`
	DefaultOrganization string          `json:"default_organization" yaml:"default_organization"`
	DefaultPurpose      string          `json:"default_purpose" yaml:"default_purpose"`
	ConsentValidity     *timex.Duration `json:"consent_validity" yaml:"consent_validity"`
	SweepOnLoad         *bool           `json:"sweep_on_load" yaml:"sweep_on_load"`
	LogLevel            string          `json:"log_level" yaml:"log_level"`
	LogFormat           string          `json:"log_format" yaml:"log_format"`
}

// parseFile overlays Config with values loaded from a config file.
//
// The file path comes from -c/-config (or $CONSENTVAULT_CONFIG) via
// flagx.JsonConfigFlags; with no path nothing is loaded. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON. ${VAR} references
// are expanded from the environment before decoding. Only keys present in
// the file replace the current values. Panics on read or decode errors.
func parseFile(cfg *Config) {
	configFile := flagx.JsonConfigFlags()
	if configFile == "" {
		return
	}

	var fc FileConfig

	data, err := os.ReadFile(configFile)
	if err != nil {
		panic(err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(expanded, &fc)
	default:
		err = json.Unmarshal(expanded, &fc)
	}
	if err != nil {
		panic(err)
	}

	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.AppName, fc.AppName)
	setString(&cfg.DefaultOrganization, fc.DefaultOrganization)
	setString(&cfg.DefaultPurpose, fc.DefaultPurpose)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.ConsentValidity != nil {
		cfg.ConsentValidity = fc.ConsentValidity.Duration
	}
	if fc.SweepOnLoad != nil {
		cfg.SweepOnLoad = *fc.SweepOnLoad
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
