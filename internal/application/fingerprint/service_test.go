package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSplit-QC/internal/domain/molecule"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/storage/npy"
	apperrors "github.com/turtacn/ChemSplit-QC/pkg/errors"
)

func writeInput(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smiles.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestRun_ProducesRowAlignedSparseMatrix(t *testing.T) {
	input := writeInput(t, "CCO\nc1ccccc1\nCC(=O)O\n")
	output := filepath.Join(t.TempDir(), "cats.npz")

	svc := NewService(nil)
	result, err := svc.Run(context.Background(), &RunInput{
		InputPath:  input,
		OutputPath: output,
		Workers:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Computed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, molecule.FingerprintDim, result.Dimensions)
	assert.NotEmpty(t, result.RunID)

	csr, err := npy.LoadCSR(output)
	require.NoError(t, err)
	assert.Equal(t, 3, csr.Rows)
	assert.Equal(t, molecule.FingerprintDim, csr.Cols)
	assert.Greater(t, csr.NNZ(), 0)

	// Row order matches input order: recompute row 0 directly.
	mol, err := molecule.ParseSMILES("CCO")
	require.NoError(t, err)
	fp, err := molecule.CATS(mol, molecule.CATSOptions{})
	require.NoError(t, err)

	dense, err := csr.ToDense()
	require.NoError(t, err)
	for j := 0; j < molecule.FingerprintDim; j++ {
		assert.Equal(t, fp[j], dense.At(0, j), "column %d", j)
	}
}

func TestRun_SkipsUnparseableRows(t *testing.T) {
	input := writeInput(t, "CCO\nnot_a_smiles?\nCC\n")
	output := filepath.Join(t.TempDir(), "cats.npz")

	result, err := NewService(nil).Run(context.Background(), &RunInput{
		InputPath:  input,
		OutputPath: output,
		Workers:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Computed)
	assert.Equal(t, 1, result.Skipped, "bad row skipped, not fatal")

	// The skipped row keeps its position as an all-zero row.
	csr, err := npy.LoadCSR(output)
	require.NoError(t, err)
	assert.Equal(t, 3, csr.Rows)
	assert.Equal(t, csr.Indptr[1], csr.Indptr[2], "row 1 holds no nonzeros")
}

func TestRun_AllInputsSkipped(t *testing.T) {
	input := writeInput(t, "???\n!!!\n")
	output := filepath.Join(t.TempDir(), "cats.npz")

	_, err := NewService(nil).Run(context.Background(), &RunInput{
		InputPath:  input,
		OutputPath: output,
		Workers:    1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAllInputsSkipped))
}

func TestRun_LimitPrefix(t *testing.T) {
	input := writeInput(t, "CCO\nCC\nCCC\nCCCC\n")
	output := filepath.Join(t.TempDir(), "cats.npz")

	result, err := NewService(nil).Run(context.Background(), &RunInput{
		InputPath:  input,
		OutputPath: output,
		Limit:      2,
		Workers:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	csr, err := npy.LoadCSR(output)
	require.NoError(t, err)
	assert.Equal(t, 2, csr.Rows)
}

func TestRun_MissingInput(t *testing.T) {
	_, err := NewService(nil).Run(context.Background(), &RunInput{
		InputPath:  filepath.Join(t.TempDir(), "absent.csv"),
		OutputPath: filepath.Join(t.TempDir(), "out.npz"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCSVParse))
}

func TestReadSMILESColumn_FirstColumnOnly(t *testing.T) {
	input := writeInput(t, "CCO,extra\nCC,other\n")
	rows, err := ReadSMILESColumn(input, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CC"}, rows)
}
