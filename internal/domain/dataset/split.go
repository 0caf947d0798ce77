package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// TargetSubset restricts a label matrix to the given target columns and drops
// every row without a positive label in the subset, keeping the feature
// matrix row-aligned.  An out-of-bounds column or an empty surviving class is
// reported rather than propagated as degenerate statistics.
func TargetSubset(x, y *mat.Dense, targets []int) (*mat.Dense, *mat.Dense, error) {
	xr, _ := x.Dims()
	yr, yc := y.Dims()
	if xr != yr {
		return nil, nil, errors.Newf(errors.CodeRowMisaligned,
			"feature matrix has %d rows but label matrix has %d", xr, yr)
	}
	for _, t := range targets {
		if t < 0 || t >= yc {
			return nil, nil, errors.Newf(errors.CodeTargetOutOfRange,
				"target column %d out of range [0, %d)", t, yc)
		}
	}

	var keep []int
	for i := 0; i < yr; i++ {
		for _, t := range targets {
			if y.At(i, t) > 0 {
				keep = append(keep, i)
				break
			}
		}
	}
	if len(keep) == 0 {
		return nil, nil, errors.New(errors.CodeEmptyClass,
			"no rows carry a positive label in the requested target subset")
	}

	xSub, err := SelectRows(x, keep)
	if err != nil {
		return nil, nil, err
	}
	ySub := mat.NewDense(len(keep), len(targets), nil)
	for i, ri := range keep {
		for j, t := range targets {
			ySub.Set(i, j, y.At(ri, t))
		}
	}
	return xSub, ySub, nil
}

// MergedSplit is the two-matrix train/test form consumed by a classifier:
// features stacked actives-first with a parallel binary label vector.
type MergedSplit struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest []float64
}

// MergeFeatureMatrices stacks the four active/inactive train/test feature
// matrices into train and test matrices with 1/0 label vectors.  Actives come
// first in each stack, which is what makes SplitFeatureMatrices an exact
// inverse.
func MergeFeatureMatrices(activesTrain, activesTest, inactivesTrain, inactivesTest *mat.Dense) (*MergedSplit, error) {
	xTrain, err := VStack(activesTrain, inactivesTrain)
	if err != nil {
		return nil, err
	}
	xTest, err := VStack(activesTest, inactivesTest)
	if err != nil {
		return nil, err
	}
	return &MergedSplit{
		XTrain: xTrain,
		XTest:  xTest,
		YTrain: binaryLabels(numRows(activesTrain), numRows(inactivesTrain)),
		YTest:  binaryLabels(numRows(activesTest), numRows(inactivesTest)),
	}, nil
}

// SplitFeatureMatrices recovers the four group matrices from a merged split
// by partitioning rows on their labels, preserving row order within each
// group.  It is the exact inverse of MergeFeatureMatrices.
func SplitFeatureMatrices(s *MergedSplit) (activesTrain, activesTest, inactivesTrain, inactivesTest *mat.Dense, err error) {
	if numRows(s.XTrain) != len(s.YTrain) || numRows(s.XTest) != len(s.YTest) {
		return nil, nil, nil, nil, errors.New(errors.CodeRowMisaligned,
			"label vectors do not match feature matrix row counts")
	}
	activesTrain, inactivesTrain, err = partitionByLabel(s.XTrain, s.YTrain)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	activesTest, inactivesTest, err = partitionByLabel(s.XTest, s.YTest)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return activesTrain, activesTest, inactivesTrain, inactivesTest, nil
}

func partitionByLabel(x *mat.Dense, labels []float64) (pos, neg *mat.Dense, err error) {
	var posRows, negRows []int
	for i, l := range labels {
		if l == 1 {
			posRows = append(posRows, i)
		} else {
			negRows = append(negRows, i)
		}
	}
	if pos, err = SelectRows(x, posRows); err != nil {
		return nil, nil, err
	}
	if neg, err = SelectRows(x, negRows); err != nil {
		return nil, nil, err
	}
	return pos, neg, nil
}

func binaryLabels(numPos, numNeg int) []float64 {
	out := make([]float64, numPos+numNeg)
	for i := 0; i < numPos; i++ {
		out[i] = 1
	}
	return out
}

func numRows(m *mat.Dense) int {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()
	return r
}

// ─────────────────────────────────────────────────────────────────────────────
// Cluster-granular splitting
// ─────────────────────────────────────────────────────────────────────────────

// SplitClusters partitions the positive and negative cluster id lists into
// disjoint test and train sets.  At least one positive cluster always lands
// in the test set; the negative test count truncates rather than rounds.
// When rng is non-nil the lists are shuffled first, so cluster selection is
// random but reproducible under a fixed seed.
func SplitClusters(posLabels, negLabels []int, posTestFraction, negTestFraction float64, rng *rand.Rand) (test, train []int) {
	pos := shuffled(posLabels, rng)
	neg := shuffled(negLabels, rng)

	posCut := int(math.Round(float64(len(pos)) * posTestFraction))
	if posCut < 1 {
		posCut = 1
	}
	negCut := int(float64(len(neg)) * negTestFraction)

	test = append(append([]int{}, pos[:posCut]...), neg[:negCut]...)
	train = append(append([]int{}, pos[posCut:]...), neg[negCut:]...)
	return test, train
}

// SplitClustersPartial is the variant used after trimming, where only part of
// the negative clusters are kept: negTestFraction and negTrainFraction are
// taken from opposite ends of the shuffled list and the remainder is
// discarded.  Their sum above 1 would overlap and is an error.
func SplitClustersPartial(posLabels, negLabels []int, posTestFraction, negTestFraction, negTrainFraction float64, rng *rand.Rand) (test, train []int, err error) {
	if negTestFraction+negTrainFraction > 1 {
		return nil, nil, errors.New(errors.CodeFractionSum,
			"sum of test and train proportions must not exceed 1")
	}
	pos := shuffled(posLabels, rng)
	neg := shuffled(negLabels, rng)

	posCut := int(math.Round(float64(len(pos)) * posTestFraction))
	if posCut < 1 {
		posCut = 1
	}
	negTestCut := int(math.Round(float64(len(neg)) * negTestFraction))
	negTrainCut := int(math.Round(float64(len(neg)) * negTrainFraction))

	test = append(append([]int{}, pos[:posCut]...), neg[:negTestCut]...)
	train = append(append([]int{}, pos[posCut:]...), neg[len(neg)-negTrainCut:]...)
	return test, train, nil
}

func shuffled(labels []int, rng *rand.Rand) []int {
	out := append([]int{}, labels...)
	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// GroupIndices resolves a cluster split into the four row-index groups for
// one target column: actives test, actives train, inactives test, inactives
// train.  clusters must be row-aligned with y.
func GroupIndices(y *mat.Dense, target int, clusters []int, testClusters, trainClusters []int) (activesTest, activesTrain, inactivesTest, inactivesTrain []int, err error) {
	yr, yc := y.Dims()
	if target < 0 || target >= yc {
		return nil, nil, nil, nil, errors.Newf(errors.CodeTargetOutOfRange,
			"target column %d out of range [0, %d)", target, yc)
	}
	if len(clusters) != yr {
		return nil, nil, nil, nil, errors.Newf(errors.CodeRowMisaligned,
			"cluster assignment has %d entries but label matrix has %d rows", len(clusters), yr)
	}

	inTest := intSet(testClusters)
	inTrain := intSet(trainClusters)
	for i := 0; i < yr; i++ {
		positive := y.At(i, target) > 0
		switch {
		case inTest[clusters[i]] && positive:
			activesTest = append(activesTest, i)
		case inTest[clusters[i]]:
			inactivesTest = append(inactivesTest, i)
		case inTrain[clusters[i]] && positive:
			activesTrain = append(activesTrain, i)
		case inTrain[clusters[i]]:
			inactivesTrain = append(inactivesTrain, i)
		}
	}
	return activesTest, activesTrain, inactivesTest, inactivesTrain, nil
}

func intSet(vals []int) map[int]bool {
	m := make(map[int]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// MakeClusterSplit draws a random holdout at cluster granularity: roughly
// holdoutFraction of the distinct cluster ids become test clusters and their
// rows form the test partition.  No cluster contributes rows to both sides.
func MakeClusterSplit(x, y *mat.Dense, clusters []int, holdoutFraction float64, rng *rand.Rand) (*MergedSplit, error) {
	xr, _ := x.Dims()
	if len(clusters) != xr {
		return nil, errors.Newf(errors.CodeRowMisaligned,
			"cluster assignment has %d entries but feature matrix has %d rows", len(clusters), xr)
	}

	distinct := distinctClusters(clusters)
	numTest := int(float64(len(distinct)) * holdoutFraction)
	if numTest < 1 {
		numTest = 1
	}
	picked := shuffled(distinct, rng)[:numTest]
	inTest := intSet(picked)

	var testRows, trainRows []int
	for i, c := range clusters {
		if inTest[c] {
			testRows = append(testRows, i)
		} else {
			trainRows = append(trainRows, i)
		}
	}

	xTrain, err := SelectRows(x, trainRows)
	if err != nil {
		return nil, err
	}
	xTest, err := SelectRows(x, testRows)
	if err != nil {
		return nil, err
	}
	return &MergedSplit{
		XTrain: xTrain,
		XTest:  xTest,
		YTrain: columnValues(y, trainRows),
		YTest:  columnValues(y, testRows),
	}, nil
}

func distinctClusters(clusters []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, c := range clusters {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// columnValues reads column 0 of y at the given rows; y may be nil when the
// caller splits features only.
func columnValues(y *mat.Dense, rows []int) []float64 {
	if y == nil {
		return nil
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = y.At(r, 0)
	}
	return out
}
