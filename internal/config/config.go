// Package config holds operator-level settings for piiredact: batch
// parallelism, the default output path, and the HTTP listener.
//
// Values come from Viper, which merges (highest first) explicit Set calls and
// bound flags, PIIREDACT_* environment variables, piiredact.config.yaml, and
// the defaults registered here. The rule table itself is not configurable.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the PIIREDACT_ prefix
// (e.g. "rate_limit_rpm" → PIIREDACT_RATE_LIMIT_RPM) and to a YAML field
// in piiredact.config.yaml.
const (
	KeyWorkers      = "workers"
	KeyOutputFile   = "output_file"
	KeyListenAddr   = "listen_addr"
	KeyRateLimitRPM = "rate_limit_rpm"
	KeyClientRPM    = "rate_limit_client_rpm"
)

// EnvPrefix is the environment variable prefix for every key.
const EnvPrefix = "PIIREDACT"

const (
	DefaultOutputFile   = "redacted_output.csv"
	DefaultListenAddr   = ":8080"
	DefaultRateLimitRPM = 600
	DefaultClientRPM    = 120
)

// Config holds resolved configuration for one piiredact process.
type Config struct {
	Workers      int    `yaml:"workers"`               // concurrent record evaluations in a batch
	OutputFile   string `yaml:"output_file"`           // used when redact is given no -o
	ListenAddr   string `yaml:"listen_addr"`           // serve listener
	RateLimitRPM int    `yaml:"rate_limit_rpm"`        // server-wide; 0 disables
	ClientRPM    int    `yaml:"rate_limit_client_rpm"` // per client IP; 0 disables
}

func init() {
	SetDefaults(viper.GetViper())
}

// SetDefaults registers env handling and defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyOutputFile, DefaultOutputFile)
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
	v.SetDefault(KeyRateLimitRPM, DefaultRateLimitRPM)
	v.SetDefault(KeyClientRPM, DefaultClientRPM)
}

// Load reads configuration from the global Viper instance and validates it.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Workers:      v.GetInt(KeyWorkers),
		OutputFile:   v.GetString(KeyOutputFile),
		ListenAddr:   v.GetString(KeyListenAddr),
		RateLimitRPM: v.GetInt(KeyRateLimitRPM),
		ClientRPM:    v.GetInt(KeyClientRPM),
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive (got %d)", c.Workers)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output_file must not be empty")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must not be negative (got %d)", c.RateLimitRPM)
	}
	if c.ClientRPM < 0 {
		return fmt.Errorf("rate_limit_client_rpm must not be negative (got %d)", c.ClientRPM)
	}
	return nil
}
