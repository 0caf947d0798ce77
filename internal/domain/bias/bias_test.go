package bias

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/turtacn/ChemSplit-QC/pkg/errors"
)

func constMatrix(rows, cols int, v float64) *mat.Dense {
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, v)
		}
	}
	return out
}

func identicalQuartet(rows, cols int, v float64) *DistanceQuartet {
	return &DistanceQuartet{
		ActivesTestActivesTrain:     constMatrix(rows, cols, v),
		ActivesTestInactivesTrain:   constMatrix(rows, cols, v),
		InactivesTestInactivesTrain: constMatrix(rows, cols, v),
		InactivesTestActivesTrain:   constMatrix(rows, cols, v),
	}
}

func TestCalcVE_IdenticalMatricesIsZero(t *testing.T) {
	ve, err := CalcVE(identicalQuartet(4, 6, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, ve)
}

func TestCalcAVE_IdenticalDistributionsIsZero(t *testing.T) {
	// Same-label and cross-label distances drawn identically: the paired S
	// terms cancel exactly.
	ave, err := CalcAVE(identicalQuartet(5, 5, 0.3))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ave, 1e-12)
}

func TestCalcAVE_PerfectlyBiasedSplit(t *testing.T) {
	// Same-label neighbors at distance 0, cross-label at distance beyond
	// every threshold: each same-label S term is 49/50 (only t=0 misses) and
	// each cross-label term is 0.
	q := &DistanceQuartet{
		ActivesTestActivesTrain:     constMatrix(3, 4, 0),
		ActivesTestInactivesTrain:   constMatrix(3, 4, 2),
		InactivesTestInactivesTrain: constMatrix(5, 4, 0),
		InactivesTestActivesTrain:   constMatrix(5, 4, 2),
	}
	ave, err := CalcAVE(q)
	require.NoError(t, err)
	assert.InDelta(t, 2.0*49.0/50.0, ave, 1e-12)
}

func TestCalcAVE_ThresholdBoundaries(t *testing.T) {
	// Distance 1.0 everywhere: strictly below no threshold, since the
	// comparison is d < t and the largest threshold is exactly 1.
	ave, err := CalcAVE(&DistanceQuartet{
		ActivesTestActivesTrain:     constMatrix(2, 2, 1),
		ActivesTestInactivesTrain:   constMatrix(2, 2, 2),
		InactivesTestInactivesTrain: constMatrix(2, 2, 2),
		InactivesTestActivesTrain:   constMatrix(2, 2, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ave)
}

func TestCalcVE_KnownGap(t *testing.T) {
	// Active test rows sit 0.2 from their own class and 0.6 from the other;
	// inactive rows are symmetric, so VE = sqrt(0.4^2 + 0.4^2).
	q := &DistanceQuartet{
		ActivesTestActivesTrain:     constMatrix(3, 5, 0.2),
		ActivesTestInactivesTrain:   constMatrix(3, 5, 0.6),
		InactivesTestInactivesTrain: constMatrix(4, 5, 0.2),
		InactivesTestActivesTrain:   constMatrix(4, 5, 0.6),
	}
	ve, err := CalcVE(q)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.32), ve, 1e-12)
}

func TestQuartetValidate_EmptyGroup(t *testing.T) {
	q := identicalQuartet(3, 3, 0.5)
	q.InactivesTestActivesTrain = nil

	require.Error(t, q.Validate())

	_, err := CalcAVE(q)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEmptyGroup))

	_, err = CalcVE(q)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEmptyGroup))
}

// TestCalcAVE_ColumnSubsetInvariance: only row minima matter, so replacing a
// matrix with its per-row nearest columns must not move the score.  This is
// the property that lets the approximate provider feed the estimators.
func TestCalcAVE_ColumnSubsetInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	full := mat.NewDense(10, 30, nil)
	for i := 0; i < 10; i++ {
		for j := 0; j < 30; j++ {
			full.Set(i, j, rng.Float64())
		}
	}

	minsOnly := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		best := math.Inf(1)
		for j := 0; j < 30; j++ {
			if v := full.At(i, j); v < best {
				best = v
			}
		}
		minsOnly.Set(i, 0, best)
	}

	other := constMatrix(10, 3, 0.5)
	fullQ := &DistanceQuartet{full, other, other, other}
	minQ := &DistanceQuartet{minsOnly, other, other, other}

	aveFull, err := CalcAVE(fullQ)
	require.NoError(t, err)
	aveMin, err := CalcAVE(minQ)
	require.NoError(t, err)
	assert.InDelta(t, aveFull, aveMin, 1e-12)

	veFull, err := CalcVE(fullQ)
	require.NoError(t, err)
	veMin, err := CalcVE(minQ)
	require.NoError(t, err)
	assert.InDelta(t, veFull, veMin, 1e-12)
}

func TestTrim(t *testing.T) {
	// Three test rows against five train columns; columns 1 and 3 are the
	// closest to the test set and must go first.
	d := mat.NewDense(3, 5, []float64{
		0.9, 0.1, 0.8, 0.2, 0.7,
		0.9, 0.3, 0.8, 0.1, 0.7,
		0.9, 0.2, 0.8, 0.3, 0.7,
	})
	train := []int{10, 11, 12, 13, 14}

	kept, err := Trim(d, train, 0.4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{10, 12, 14}, kept)

	// Zero trim fraction keeps everything.
	kept, err = Trim(d, train, 0)
	require.NoError(t, err)
	assert.Equal(t, train, kept)
}

func TestTrim_Errors(t *testing.T) {
	d := mat.NewDense(1, 2, []float64{0.1, 0.2})

	_, err := Trim(d, []int{1, 2}, 1.0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeFractionSum))

	_, err = Trim(d, []int{1}, 0.5)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDimensionMismatch))
}
