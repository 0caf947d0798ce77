// Package bias implements the AVE and VE train-test split bias estimators.
// Both reduce a quartet of test-versus-train distance matrices to a scalar:
// AVE averages thresholded nearest-neighbor hit rates, VE combines mean
// nearest-neighbor distance gaps.  A split with no measurable bias scores
// near zero on both.
package bias

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// NumThresholds is the number of evenly spaced cut-offs in [0, 1] the AVE
// similarity score averages over.
const NumThresholds = 50

// DistanceQuartet holds the four group-versus-group distance matrices of one
// evaluated split.  Rows are test ligands, columns are train-side distances;
// the column count may be the full train group (exact path) or the k nearest
// (approximate path) without changing either estimator.
type DistanceQuartet struct {
	ActivesTestActivesTrain     *mat.Dense
	ActivesTestInactivesTrain   *mat.Dense
	InactivesTestInactivesTrain *mat.Dense
	InactivesTestActivesTrain   *mat.Dense
}

// Validate reports an empty group instead of letting a min/any reduction run
// over zero elements and return an undefined statistic.
func (q *DistanceQuartet) Validate() error {
	for _, g := range []struct {
		name string
		m    *mat.Dense
	}{
		{"actives-test vs actives-train", q.ActivesTestActivesTrain},
		{"actives-test vs inactives-train", q.ActivesTestInactivesTrain},
		{"inactives-test vs inactives-train", q.InactivesTestInactivesTrain},
		{"inactives-test vs actives-train", q.InactivesTestActivesTrain},
	} {
		if g.m == nil {
			return errors.Newf(errors.CodeEmptyGroup, "%s matrix is missing", g.name)
		}
		if r, c := g.m.Dims(); r == 0 || c == 0 {
			return errors.Newf(errors.CodeEmptyGroup, "%s group is empty", g.name)
		}
	}
	return nil
}

// CalcAVE computes the asymmetric validation embedding bias: for each quartet
// matrix, the fraction of test rows with at least one train neighbor below
// threshold t, averaged over 50 thresholds in [0, 1], then combined as
//
//	AVE = S(aTest,aTrain) - S(aTest,iTrain) + S(iTest,iTrain) - S(iTest,aTrain)
//
// The range is roughly [-2, 2]; zero means the split is indistinguishable by
// nearest-neighbor similarity.
func CalcAVE(q *DistanceQuartet) (float64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return thresholdScore(q.ActivesTestActivesTrain) -
		thresholdScore(q.ActivesTestInactivesTrain) +
		thresholdScore(q.InactivesTestInactivesTrain) -
		thresholdScore(q.InactivesTestActivesTrain), nil
}

// CalcVE computes the vector embedding bias: the mean nearest-neighbor
// distance gap between opposite-label and same-label train neighbors, for
// each test group, combined as the Euclidean norm of the two terms.  Always
// non-negative; exactly zero for four identical matrices.
func CalcVE(q *DistanceQuartet) (float64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	termOne := meanRowMinDiff(q.ActivesTestInactivesTrain, q.ActivesTestActivesTrain)
	termTwo := meanRowMinDiff(q.InactivesTestActivesTrain, q.InactivesTestInactivesTrain)
	return math.Sqrt(termOne*termOne + termTwo*termTwo), nil
}

// thresholdScore averages, over the 50 thresholds, the fraction of rows whose
// minimum entry falls below the threshold.  any(row < t) equals min(row) < t,
// so only the row minima matter.
func thresholdScore(d *mat.Dense) float64 {
	mins := rowMinima(d)
	total := 0.0
	for k := 0; k < NumThresholds; k++ {
		t := float64(k) / float64(NumThresholds-1)
		hits := 0
		for _, m := range mins {
			if m < t {
				hits++
			}
		}
		total += float64(hits) / float64(len(mins))
	}
	return total / NumThresholds
}

// meanRowMinDiff returns mean(rowMin(a) - rowMin(b)); a and b share their
// test group so their row counts match.
func meanRowMinDiff(a, b *mat.Dense) float64 {
	aMins := rowMinima(a)
	bMins := rowMinima(b)
	sum := 0.0
	for i := range aMins {
		sum += aMins[i] - bMins[i]
	}
	return sum / float64(len(aMins))
}

func rowMinima(d *mat.Dense) []float64 {
	r, c := d.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		best := math.Inf(1)
		for j := 0; j < c; j++ {
			if v := d.At(i, j); v < best {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

// Trim drops the fraction of train rows closest to any test row, returning
// the surviving train indices.  dmat rows are test ligands and its columns
// are train candidates addressed by trainIndices positions.  Trimming the
// most split-straddling train ligands is the standard way to debias a split
// after measuring it.
func Trim(dmat *mat.Dense, trainIndices []int, fraction float64) ([]int, error) {
	if fraction < 0 || fraction >= 1 {
		return nil, errors.Newf(errors.CodeFractionSum,
			"trim fraction %v out of range [0, 1)", fraction)
	}
	_, c := dmat.Dims()
	if c != len(trainIndices) {
		return nil, errors.Newf(errors.CodeDimensionMismatch,
			"distance matrix has %d columns but %d train indices given", c, len(trainIndices))
	}

	numToTrim := int(float64(len(trainIndices)) * fraction)
	if numToTrim == 0 {
		return append([]int{}, trainIndices...), nil
	}

	mins := columnMinima(dmat)
	order := argsort(mins)

	kept := make([]int, 0, len(trainIndices)-numToTrim)
	for _, pos := range order[numToTrim:] {
		kept = append(kept, trainIndices[pos])
	}
	return kept, nil
}

func columnMinima(d *mat.Dense) []float64 {
	r, c := d.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		best := math.Inf(1)
		for i := 0; i < r; i++ {
			if v := d.At(i, j); v < best {
				best = v
			}
		}
		out[j] = best
	}
	return out
}

// argsort returns the positions that would sort vals ascending, stable under
// ties.
func argsort(vals []float64) []int {
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return vals[order[i]] < vals[order[j]] })
	return order
}
