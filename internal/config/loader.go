// Package config provides configuration loading, defaults, and validation for
// the ChemSplit-QC toolkit.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all toolkit settings.
const envPrefix = "CHEMSPLIT"

// newViper builds a pre-configured Viper instance with the toolkit's standard
// settings: YAML file type, CHEMSPLIT_ env prefix, automatic env binding, and
// a key replacer that maps "." → "_" so that nested keys like
// "similarity.metric" resolve to "CHEMSPLIT_SIMILARITY_METRIC".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Viper only surfaces environment variables through Unmarshal for keys it
	// already knows about, so every settable key is bound explicitly.
	for _, key := range settableKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// settableKeys lists every configuration key reachable via file or
// CHEMSPLIT_* environment variable.
var settableKeys = []string{
	"log.level",
	"log.format",
	"log.output_paths",
	"log.error_output_paths",
	"fingerprint.max_distance",
	"fingerprint.buckets",
	"fingerprint.smooth",
	"similarity.metric",
	"similarity.approx_threshold",
	"similarity.neighbors",
	"similarity.hnsw.m",
	"similarity.hnsw.ef_construction",
	"similarity.hnsw.ef_search",
	"similarity.hnsw.ml",
	"similarity.hnsw.seed",
	"bias.test_fraction",
	"bias.seed",
	"pipeline.workers",
	"pipeline.limit",
}

// Load reads the YAML file at configPath, merges any CHEMSPLIT_* environment
// variable overrides, applies toolkit defaults for unset fields, and validates
// the result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMSPLIT_* environment variables,
// with no config file required.
//
// Environment variable naming convention:
//
//	CHEMSPLIT_<SECTION>_<FIELD>   e.g.  CHEMSPLIT_PIPELINE_WORKERS
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
