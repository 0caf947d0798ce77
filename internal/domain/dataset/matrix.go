// Package dataset holds the feature/label matrix model and the partitioning
// utilities used to build train/test splits for bias evaluation: row-aligned
// subsetting by target column, active/inactive merge and split, and
// cluster-granular holdout selection.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// SelectRows returns a new matrix containing the given rows of m, in the
// order listed.  A zero-row selection returns nil without error: empty groups
// are legal here and surfaced later by the bias quartet validation.  An index
// out of range yields a bounds error rather than a panic.
func SelectRows(m *mat.Dense, rows []int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	r, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, ri := range rows {
		if ri < 0 || ri >= r {
			return nil, errors.Newf(errors.CodeTargetOutOfRange,
				"row index %d out of range [0, %d)", ri, r)
		}
		out.SetRow(i, mat.Row(nil, ri, m))
	}
	return out, nil
}

// VStack stacks a on top of b.  Both must share a column count; a nil input
// stands for an empty matrix.
func VStack(a, b *mat.Dense) (*mat.Dense, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != bc {
		return nil, errors.Newf(errors.CodeDimensionMismatch,
			"cannot stack %d-column and %d-column matrices", ac, bc)
	}
	out := mat.NewDense(ar+br, ac, nil)
	for i := 0; i < ar; i++ {
		out.SetRow(i, mat.Row(nil, i, a))
	}
	for i := 0; i < br; i++ {
		out.SetRow(ar+i, mat.Row(nil, i, b))
	}
	return out, nil
}
