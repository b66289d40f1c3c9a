// Package config loads runtime configuration for the consent vault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via flags: -c or -config,
//     or the CONSENTVAULT_CONFIG environment variable. JSON, or YAML when the
//     name ends in .yaml/.yml.
//  3. CONSENTVAULT_* environment variables (see parseEnv); a .env file in the
//     working directory is loaded first.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path of the vault database
//	-n string   application name used to prefix storage keys
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so consent_validity may be a string like
// "8760h" or integer nanoseconds. ${VAR} references are expanded:
//
//	{
//	  "db_path": "${HOME}/.consentvault/vault.db",
//	  "app_name": "pharma_blockchain",
//	  "default_organization": "MedSecure Clinical Partners",
//	  "default_purpose": "Clinical Research",
//	  "consent_validity": "8760h",
//	  "sweep_on_load": true,
//	  "log_level": "info",
//	  "log_format": "json"
//	}
package config
