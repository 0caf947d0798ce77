package npy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/internal/domain/dataset"
	apperrors "github.com/turtacn/ChemSplit-QC/pkg/errors"
)

func TestDenseRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dense.npy")
	m := mat.NewDense(3, 2, []float64{1, 0, 0.5, 2, 0, 3})

	require.NoError(t, SaveDense(path, m))

	back, err := LoadDense(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, back))
}

func TestLoadDense_MissingFile(t *testing.T) {
	_, err := LoadDense(filepath.Join(t.TempDir(), "absent.npy"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMatrixIO))
}

func TestCSRRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.npz")
	dense := mat.NewDense(4, 5, []float64{
		0, 1, 0, 0, 2,
		0, 0, 0, 0, 0,
		3, 0, 0, 4, 0,
		0, 0, 5, 0, 0,
	})
	c := dataset.NewCSRFromDense(dense)

	require.NoError(t, SaveCSR(path, c))

	back, err := LoadCSR(path)
	require.NoError(t, err)
	require.NoError(t, back.Validate())

	assert.Equal(t, c.Rows, back.Rows)
	assert.Equal(t, c.Cols, back.Cols)
	assert.Equal(t, c.Data, back.Data)
	assert.Equal(t, c.Indices, back.Indices)
	assert.Equal(t, c.Indptr, back.Indptr)

	dback, err := back.ToDense()
	require.NoError(t, err)
	assert.True(t, mat.Equal(dense, dback))
}

func TestSaveCSR_RejectsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.npz")
	bad := &dataset.CSR{
		Data:    []float64{1},
		Indices: []int32{0},
		Indptr:  []int32{0},
		Rows:    1,
		Cols:    1,
	}
	err := SaveCSR(path, bad)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCorruptMatrix))
}

func TestLoadCSR_MissingMember(t *testing.T) {
	// A dense .npy is not a zip archive at all.
	path := filepath.Join(t.TempDir(), "dense.npy")
	require.NoError(t, SaveDense(path, mat.NewDense(1, 1, []float64{1})))

	_, err := LoadCSR(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMatrixIO))
}
