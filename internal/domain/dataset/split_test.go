package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/turtacn/ChemSplit-QC/pkg/errors"
)

func denseFromRows(t *testing.T, rows [][]float64) *mat.Dense {
	t.Helper()
	require.NotEmpty(t, rows)
	out := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		out.SetRow(i, r)
	}
	return out
}

func TestTargetSubset(t *testing.T) {
	x := denseFromRows(t, [][]float64{
		{1, 0}, {0, 1}, {1, 1}, {0, 0},
	})
	y := denseFromRows(t, [][]float64{
		{1, 0, 0},
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})

	xSub, ySub, err := TargetSubset(x, y, []int{0, 1})
	require.NoError(t, err)

	r, c := ySub.Dims()
	assert.Equal(t, 2, r, "rows 1 and 3 have no positive in columns 0-1")
	assert.Equal(t, 2, c)

	xr, _ := xSub.Dims()
	assert.Equal(t, 2, xr, "feature rows stay aligned")
	assert.Equal(t, 1.0, xSub.At(0, 0), "row 0 survives")
	assert.Equal(t, 1.0, xSub.At(1, 1), "row 2 survives")
}

func TestTargetSubset_Errors(t *testing.T) {
	x := denseFromRows(t, [][]float64{{1}, {2}})
	y := denseFromRows(t, [][]float64{{0}, {0}})

	_, _, err := TargetSubset(x, y, []int{3})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTargetOutOfRange))

	_, _, err = TargetSubset(x, y, []int{0})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEmptyClass))

	misaligned := denseFromRows(t, [][]float64{{0}})
	_, _, err = TargetSubset(x, misaligned, []int{0})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRowMisaligned))
}

// TestMergeSplit_InverseLaw: splitting a merged quartet reproduces the four
// inputs, row order preserved within each group.
func TestMergeSplit_InverseLaw(t *testing.T) {
	activesTrain := denseFromRows(t, [][]float64{{1, 2}, {3, 4}})
	activesTest := denseFromRows(t, [][]float64{{5, 6}})
	inactivesTrain := denseFromRows(t, [][]float64{{7, 8}, {9, 10}, {11, 12}})
	inactivesTest := denseFromRows(t, [][]float64{{13, 14}, {15, 16}})

	merged, err := MergeFeatureMatrices(activesTrain, activesTest, inactivesTrain, inactivesTest)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1, 0, 0, 0}, merged.YTrain)
	assert.Equal(t, []float64{1, 0, 0}, merged.YTest)

	aTrain, aTest, iTrain, iTest, err := SplitFeatureMatrices(merged)
	require.NoError(t, err)

	assert.True(t, mat.Equal(activesTrain, aTrain))
	assert.True(t, mat.Equal(activesTest, aTest))
	assert.True(t, mat.Equal(inactivesTrain, iTrain))
	assert.True(t, mat.Equal(inactivesTest, iTest))
}

func TestSplitFeatureMatrices_Misaligned(t *testing.T) {
	s := &MergedSplit{
		XTrain: denseFromRows(t, [][]float64{{1}}),
		XTest:  denseFromRows(t, [][]float64{{2}}),
		YTrain: []float64{1, 0},
		YTest:  []float64{1},
	}
	_, _, _, _, err := SplitFeatureMatrices(s)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRowMisaligned))
}

func TestSplitClusters_Disjointness(t *testing.T) {
	pos := []int{0, 1, 2, 3, 4}
	neg := []int{5, 6, 7, 8, 9, 10}
	rng := rand.New(rand.NewSource(7))

	test, train := SplitClusters(pos, neg, 0.2, 0.5, rng)

	seen := map[int]string{}
	for _, c := range test {
		seen[c] = "test"
	}
	for _, c := range train {
		require.NotEqual(t, "test", seen[c], "cluster %d appears on both sides", c)
		seen[c] = "train"
	}
	// Union covers every positive cluster and, with float fractions, every
	// negative cluster too.
	assert.Len(t, seen, len(pos)+len(neg))
}

func TestSplitClusters_AtLeastOnePositiveTestCluster(t *testing.T) {
	test, train := SplitClusters([]int{42}, nil, 0.1, 0.5, nil)
	assert.Equal(t, []int{42}, test)
	assert.Empty(t, train)
}

func TestSplitClustersPartial_FractionSum(t *testing.T) {
	_, _, err := SplitClustersPartial([]int{1}, []int{2, 3}, 0.2, 0.6, 0.5, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeFractionSum))
}

func TestSplitClustersPartial_DiscardsMiddle(t *testing.T) {
	neg := []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	test, train, err := SplitClustersPartial([]int{1, 2}, neg, 0.5, 0.2, 0.3, nil)
	require.NoError(t, err)

	// 1 positive + 2 negatives in test; 1 positive + 3 negatives in train.
	assert.Len(t, test, 3)
	assert.Len(t, train, 4)
	for _, c := range test {
		assert.NotContains(t, train, c)
	}
}

func TestGroupIndices(t *testing.T) {
	y := denseFromRows(t, [][]float64{
		{1}, {0}, {1}, {0}, {1}, {0},
	})
	clusters := []int{0, 0, 1, 1, 2, 2}

	aTest, aTrain, iTest, iTrain, err := GroupIndices(y, 0, clusters, []int{0}, []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, aTest)
	assert.Equal(t, []int{1}, iTest)
	assert.Equal(t, []int{2, 4}, aTrain)
	assert.Equal(t, []int{3, 5}, iTrain)
}

func TestGroupIndices_Errors(t *testing.T) {
	y := denseFromRows(t, [][]float64{{1}, {0}})

	_, _, _, _, err := GroupIndices(y, 5, []int{0, 1}, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTargetOutOfRange))

	_, _, _, _, err = GroupIndices(y, 0, []int{0}, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRowMisaligned))
}

func TestMakeClusterSplit_ClusterDisjointness(t *testing.T) {
	x := denseFromRows(t, [][]float64{
		{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7},
	})
	y := denseFromRows(t, [][]float64{
		{1}, {0}, {1}, {0}, {1}, {0}, {1}, {0},
	})
	clusters := []int{0, 0, 1, 1, 2, 2, 3, 3}
	rng := rand.New(rand.NewSource(99))

	split, err := MakeClusterSplit(x, y, clusters, 0.25, rng)
	require.NoError(t, err)

	testClusters := map[int]bool{}
	tr, _ := split.XTest.Dims()
	for i := 0; i < tr; i++ {
		testClusters[clusters[int(split.XTest.At(i, 0))]] = true
	}
	rr, _ := split.XTrain.Dims()
	for i := 0; i < rr; i++ {
		c := clusters[int(split.XTrain.At(i, 0))]
		assert.False(t, testClusters[c], "cluster %d leaks across the split", c)
	}
	assert.Equal(t, 8, tr+rr, "every row lands on exactly one side")
}

func TestCSR_DenseRoundtrip(t *testing.T) {
	dense := denseFromRows(t, [][]float64{
		{0, 1, 0, 2},
		{0, 0, 0, 0},
		{3, 0, 0, 4},
	})
	csr := NewCSRFromDense(dense)
	require.NoError(t, csr.Validate())
	assert.Equal(t, 4, csr.NNZ())
	assert.Equal(t, []int32{0, 2, 2, 4}, csr.Indptr)

	back, err := csr.ToDense()
	require.NoError(t, err)
	assert.True(t, mat.Equal(dense, back))
}

func TestCSR_SelectRows(t *testing.T) {
	csr, err := NewCSRFromRows([][]float64{
		{1, 0}, {0, 2}, {3, 0},
	}, 2)
	require.NoError(t, err)

	sub, err := csr.SelectRows([]int{2, 0})
	require.NoError(t, err)
	require.NoError(t, sub.Validate())

	dense, err := sub.ToDense()
	require.NoError(t, err)
	assert.Equal(t, 3.0, dense.At(0, 0))
	assert.Equal(t, 1.0, dense.At(1, 0))

	_, err = csr.SelectRows([]int{9})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTargetOutOfRange))
}

func TestCSR_ValidateRejectsCorruption(t *testing.T) {
	csr := &CSR{
		Data:    []float64{1},
		Indices: []int32{5},
		Indptr:  []int32{0, 1},
		Rows:    1,
		Cols:    2,
	}
	err := csr.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCorruptMatrix))
}
