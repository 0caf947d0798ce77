package similarity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// PairwiseDistances computes the full m×n distance matrix between the rows of
// X and Y under the given metric.  Intersections come from one binarized
// matrix product X·Yᵀ instead of per-pair loops, which is what makes the
// dense path viable up to the approximate-path threshold.
func PairwiseDistances(x, y *mat.Dense, metric Metric) (*mat.Dense, error) {
	if !metric.IsValid() {
		return nil, errors.Newf(errors.CodeUnsupportedMetric, "unsupported metric %q", metric)
	}
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xc != yc {
		return nil, errors.Newf(errors.CodeDimensionMismatch,
			"row dimensions differ: %d vs %d", xc, yc)
	}

	xb, xCard := binarize(x)
	yb, yCard := binarize(y)

	var intersect mat.Dense
	intersect.Mul(xb, yb.T())

	out := mat.NewDense(xr, yr, nil)
	for i := 0; i < xr; i++ {
		for j := 0; j < yr; j++ {
			in := intersect.At(i, j)
			var d float64
			switch metric {
			case MetricJaccard:
				union := xCard[i] + yCard[j] - in
				if union > 0 {
					d = 1 - in/union
				}
			case MetricDice:
				if total := xCard[i] + yCard[j]; total > 0 {
					d = 1 - 2*in/total
				}
			}
			out.Set(i, j, d)
		}
	}
	return out, nil
}

// SelfDistances compares X against itself.  The result is symmetric with a
// zero diagonal.
func SelfDistances(x *mat.Dense, metric Metric) (*mat.Dense, error) {
	return PairwiseDistances(x, x, metric)
}

// binarize maps nonzero entries to 1 and returns the per-row set-bit counts
// alongside.
func binarize(m *mat.Dense) (*mat.Dense, []float64) {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	card := make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				out.Set(i, j, 1)
				card[i]++
			}
		}
	}
	return out, card
}

// BinaryRows extracts binarized row vectors, the form consumed by the
// approximate index.
func BinaryRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				row[j] = 1
			}
		}
		out[i] = row
	}
	return out
}
