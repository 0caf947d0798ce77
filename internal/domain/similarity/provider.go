package similarity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/index/hnsw"
	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// DistanceProvider yields the test-versus-train distances consumed by the
// bias estimators.  The exact provider returns the full m×n matrix; the
// approximate provider returns an m×k matrix of nearest-neighbor distances.
// Both preserve the row-wise minimum and the row-wise any(d < t) statistics,
// which is all the estimators reduce over.
type DistanceProvider interface {
	// Distances compares every test row against the train rows.  Row i of
	// the result describes test row i.
	Distances(test, train *mat.Dense) (*mat.Dense, error)
}

// ExactProvider materialises full dense distance matrices.
type ExactProvider struct {
	Metric Metric
}

func (p ExactProvider) Distances(test, train *mat.Dense) (*mat.Dense, error) {
	return PairwiseDistances(test, train, p.Metric)
}

// ApproxProvider answers through an HNSW index built over the train rows,
// returning only the k nearest distances per test row.
type ApproxProvider struct {
	Metric    Metric
	Neighbors int
	Config    hnsw.Config
}

func (p ApproxProvider) Distances(test, train *mat.Dense) (*mat.Dense, error) {
	trainRows := BinaryRows(train)
	if len(trainRows) == 0 {
		return nil, errors.New(errors.CodeEmptyGroup, "cannot index an empty train set")
	}

	k := p.Neighbors
	if k < 1 {
		k = 1
	}
	if k > len(trainRows) {
		k = len(trainRows)
	}

	ix := hnsw.New(p.Config, p.Metric)
	if err := ix.Build(trainRows); err != nil {
		return nil, err
	}

	testRows := BinaryRows(test)
	out := mat.NewDense(len(testRows), k, nil)
	for i, row := range testRows {
		results, err := ix.Search(row, k)
		if err != nil {
			return nil, err
		}
		for j := 0; j < k; j++ {
			if j < len(results) {
				out.Set(i, j, results[j].Distance)
				continue
			}
			// Fewer hits than k can only happen on degenerate graphs; pad
			// with the farthest found so min/any statistics are unaffected.
			out.Set(i, j, results[len(results)-1].Distance)
		}
	}
	return out, nil
}

// ApproxThresholdDefault is the row count past which dense matrices stop
// being materialised.
const ApproxThresholdDefault = 15000

// ChooseProvider selects the provider as a pure function of input sizes: the
// approximate path engages once either side of any comparison exceeds the
// threshold.  groupSizes lists the row counts of every group involved.
func ChooseProvider(metric Metric, neighbors int, cfg hnsw.Config, threshold int, groupSizes ...int) DistanceProvider {
	if threshold <= 0 {
		threshold = ApproxThresholdDefault
	}
	for _, n := range groupSizes {
		if n > threshold {
			return ApproxProvider{Metric: metric, Neighbors: neighbors, Config: cfg}
		}
	}
	return ExactProvider{Metric: metric}
}
