// Package similarity computes set-similarity distance matrices between
// collections of binary fingerprint vectors, with an exact dense path and an
// approximate index-backed path selected by input size.
package similarity

import (
	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// Metric names a supported set-similarity distance.
type Metric string

const (
	// MetricJaccard is 1 - |A∩B| / |A∪B| over binarized vectors.
	MetricJaccard Metric = "jaccard"
	// MetricDice is 1 - 2|A∩B| / (|A|+|B|) over binarized vectors.
	MetricDice Metric = "dice"
)

// ParseMetric validates a metric name from config or CLI input.
func ParseMetric(name string) (Metric, error) {
	m := Metric(name)
	if !m.IsValid() {
		return "", errors.Newf(errors.CodeUnsupportedMetric,
			"unsupported metric %q, want %q or %q", name, MetricJaccard, MetricDice)
	}
	return m, nil
}

// IsValid reports whether m names a supported metric.
func (m Metric) IsValid() bool {
	return m == MetricJaccard || m == MetricDice
}

// Distance computes the metric between two vectors, binarizing on the fly.
// Vectors with no common support and no set bits at all are at distance 0 by
// convention, which keeps self-distance matrices zero on the diagonal even
// for empty rows.
func (m Metric) Distance(a, b []float64) float64 {
	var intersect, cardA, cardB float64
	for i := range a {
		av := a[i] != 0
		bv := b[i] != 0
		if av {
			cardA++
		}
		if bv {
			cardB++
		}
		if av && bv {
			intersect++
		}
	}
	switch m {
	case MetricJaccard:
		union := cardA + cardB - intersect
		if union == 0 {
			return 0
		}
		return 1 - intersect/union
	case MetricDice:
		if cardA+cardB == 0 {
			return 0
		}
		return 1 - 2*intersect/(cardA+cardB)
	}
	return 0
}
