// Package config defines all configuration structures for the ChemSplit-QC
// toolkit.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"

	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/monitoring/logging"
)

// FingerprintConfig holds CATS descriptor tunables.
type FingerprintConfig struct {
	// MaxDistance is the exclusive topological-distance cutoff; atom pairs at
	// this distance or beyond (including disconnected pairs) are discarded.
	MaxDistance int `mapstructure:"max_distance"`

	// Buckets is the number of distance buckets per type-pair histogram.
	Buckets int `mapstructure:"buckets"`

	// Smooth selects the Gaussian-kernel histogram variant instead of hard
	// integer increments.  The two variants are never mixed in one run.
	Smooth bool `mapstructure:"smooth"`
}

// SimilarityConfig holds distance-engine tunables.
type SimilarityConfig struct {
	// Metric is the set-distance used for all pairwise comparisons:
	// "jaccard" or "dice".
	Metric string `mapstructure:"metric"`

	// ApproxThreshold is the row count above which the engine switches from
	// exact dense matrices to the approximate nearest-neighbor index.
	ApproxThreshold int `mapstructure:"approx_threshold"`

	// Neighbors is how many nearest train-side neighbors the approximate
	// path retrieves per test row.
	Neighbors int `mapstructure:"neighbors"`

	// HNSW holds graph-index construction parameters.
	HNSW HNSWConfig `mapstructure:"hnsw"`
}

// HNSWConfig holds approximate-index construction parameters.
type HNSWConfig struct {
	M              int     `mapstructure:"m"`
	EfConstruction int     `mapstructure:"ef_construction"`
	EfSearch       int     `mapstructure:"ef_search"`
	Ml             float64 `mapstructure:"ml"`
	Seed           int64   `mapstructure:"seed"`
}

// BiasConfig holds AVE/VE estimator tunables.
type BiasConfig struct {
	// TestFraction is the fraction of clusters held out as the test set.
	TestFraction float64 `mapstructure:"test_fraction"`

	// Seed drives cluster shuffling so splits are reproducible.
	Seed int64 `mapstructure:"seed"`
}

// PipelineConfig holds batch-pipeline tunables.
type PipelineConfig struct {
	// Workers is the number of concurrent fingerprint workers.
	Workers int `mapstructure:"workers"`

	// Limit restricts processing to the first N molecules; 0 means all.
	Limit int `mapstructure:"limit"`
}

// Config is the root configuration for the toolkit.
type Config struct {
	Log         logging.LogConfig `mapstructure:"log"`
	Fingerprint FingerprintConfig `mapstructure:"fingerprint"`
	Similarity  SimilarityConfig  `mapstructure:"similarity"`
	Bias        BiasConfig        `mapstructure:"bias"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
}

// Validate checks cross-field consistency.  It assumes ApplyDefaults has
// already run, so zero values indicate genuine misconfiguration.
func (c *Config) Validate() error {
	if c.Fingerprint.MaxDistance != c.Fingerprint.Buckets+1 {
		return fmt.Errorf("config: fingerprint.max_distance (%d) must equal buckets+1 (%d)",
			c.Fingerprint.MaxDistance, c.Fingerprint.Buckets+1)
	}
	switch c.Similarity.Metric {
	case "jaccard", "dice":
	default:
		return fmt.Errorf("config: similarity.metric %q is not one of jaccard, dice", c.Similarity.Metric)
	}
	if c.Similarity.ApproxThreshold <= 0 {
		return fmt.Errorf("config: similarity.approx_threshold must be positive")
	}
	if c.Similarity.Neighbors <= 0 {
		return fmt.Errorf("config: similarity.neighbors must be positive")
	}
	if c.Bias.TestFraction <= 0 || c.Bias.TestFraction >= 1 {
		return fmt.Errorf("config: bias.test_fraction must be in (0, 1)")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("config: pipeline.workers must be positive")
	}
	if c.Pipeline.Limit < 0 {
		return fmt.Errorf("config: pipeline.limit must not be negative")
	}
	return nil
}
