package config

import "math"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMaxDistance is the exclusive topological-distance cutoff of the
	// CATS descriptor: pairs at bond distance 11 or beyond are discarded.
	DefaultMaxDistance = 11

	// DefaultBuckets is the per-pair histogram length (distances 1..10).
	DefaultBuckets = 10

	DefaultMetric = "dice"

	// DefaultApproxThreshold is the row count past which the similarity
	// engine stops materialising dense distance matrices.
	DefaultApproxThreshold = 15000

	DefaultNeighbors = 10

	DefaultHNSWM              = 16
	DefaultHNSWEfConstruction = 200
	DefaultHNSWEfSearch       = 64
	DefaultHNSWSeed           = 1

	DefaultBiasTestFraction = 0.2
	DefaultBiasSeed         = 500

	DefaultWorkers = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// NewDefaultConfig returns a Config populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the toolkit default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Fingerprint ───────────────────────────────────────────────────────────
	if cfg.Fingerprint.MaxDistance == 0 {
		cfg.Fingerprint.MaxDistance = DefaultMaxDistance
	}
	if cfg.Fingerprint.Buckets == 0 {
		cfg.Fingerprint.Buckets = DefaultBuckets
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.Metric == "" {
		cfg.Similarity.Metric = DefaultMetric
	}
	if cfg.Similarity.ApproxThreshold == 0 {
		cfg.Similarity.ApproxThreshold = DefaultApproxThreshold
	}
	if cfg.Similarity.Neighbors == 0 {
		cfg.Similarity.Neighbors = DefaultNeighbors
	}
	if cfg.Similarity.HNSW.M == 0 {
		cfg.Similarity.HNSW.M = DefaultHNSWM
	}
	if cfg.Similarity.HNSW.EfConstruction == 0 {
		cfg.Similarity.HNSW.EfConstruction = DefaultHNSWEfConstruction
	}
	if cfg.Similarity.HNSW.EfSearch == 0 {
		cfg.Similarity.HNSW.EfSearch = DefaultHNSWEfSearch
	}
	if cfg.Similarity.HNSW.Ml == 0 {
		// Canonical level multiplier 1/ln(M), computed after M settles.
		cfg.Similarity.HNSW.Ml = 1 / math.Log(float64(cfg.Similarity.HNSW.M))
	}
	if cfg.Similarity.HNSW.Seed == 0 {
		cfg.Similarity.HNSW.Seed = DefaultHNSWSeed
	}

	// ── Bias ──────────────────────────────────────────────────────────────────
	if cfg.Bias.TestFraction == 0 {
		cfg.Bias.TestFraction = DefaultBiasTestFraction
	}
	if cfg.Bias.Seed == 0 {
		cfg.Bias.Seed = DefaultBiasSeed
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = DefaultWorkers
	}
}
