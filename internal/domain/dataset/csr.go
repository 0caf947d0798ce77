package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// CSR is a compressed sparse row matrix in the standard scipy layout: Data
// holds the nonzero values of row i in Data[Indptr[i]:Indptr[i+1]], with
// their column positions in the matching Indices range.  Fingerprint matrices
// are mostly zero, so this is the persisted form.
type CSR struct {
	Data    []float64
	Indices []int32
	Indptr  []int32
	Rows    int
	Cols    int
}

// NewCSRFromDense compresses a dense matrix, dropping exact zeros.
func NewCSRFromDense(m *mat.Dense) *CSR {
	r, c := m.Dims()
	csr := &CSR{
		Rows:   r,
		Cols:   c,
		Indptr: make([]int32, r+1),
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v == 0 {
				continue
			}
			csr.Data = append(csr.Data, v)
			csr.Indices = append(csr.Indices, int32(j))
		}
		csr.Indptr[i+1] = int32(len(csr.Data))
	}
	return csr
}

// NewCSRFromRows compresses a row-major slice of equal-length vectors.
func NewCSRFromRows(rows [][]float64, cols int) (*CSR, error) {
	csr := &CSR{
		Rows:   len(rows),
		Cols:   cols,
		Indptr: make([]int32, len(rows)+1),
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Newf(errors.CodeDimensionMismatch,
				"row %d has %d columns, want %d", i, len(row), cols)
		}
		for j, v := range row {
			if v == 0 {
				continue
			}
			csr.Data = append(csr.Data, v)
			csr.Indices = append(csr.Indices, int32(j))
		}
		csr.Indptr[i+1] = int32(len(csr.Data))
	}
	return csr, nil
}

// NNZ returns the stored nonzero count.
func (c *CSR) NNZ() int { return len(c.Data) }

// Validate checks the structural invariants of the layout.
func (c *CSR) Validate() error {
	if len(c.Indptr) != c.Rows+1 {
		return errors.Newf(errors.CodeCorruptMatrix,
			"indptr length %d does not match %d rows", len(c.Indptr), c.Rows)
	}
	if len(c.Data) != len(c.Indices) {
		return errors.Newf(errors.CodeCorruptMatrix,
			"data length %d does not match indices length %d", len(c.Data), len(c.Indices))
	}
	if c.Rows > 0 && (c.Indptr[0] != 0 || int(c.Indptr[c.Rows]) != len(c.Data)) {
		return errors.New(errors.CodeCorruptMatrix, "indptr endpoints are inconsistent with data")
	}
	for i := 0; i < c.Rows; i++ {
		if c.Indptr[i] > c.Indptr[i+1] {
			return errors.Newf(errors.CodeCorruptMatrix, "indptr decreases at row %d", i)
		}
	}
	for _, j := range c.Indices {
		if j < 0 || int(j) >= c.Cols {
			return errors.Newf(errors.CodeCorruptMatrix,
				"column index %d out of range [0, %d)", j, c.Cols)
		}
	}
	return nil
}

// ToDense expands the matrix.  Rows and Cols must both be positive.
func (c *CSR) ToDense() (*mat.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Rows == 0 || c.Cols == 0 {
		return nil, errors.New(errors.CodeCorruptMatrix, "cannot densify a zero-dimension matrix")
	}
	out := mat.NewDense(c.Rows, c.Cols, nil)
	for i := 0; i < c.Rows; i++ {
		for p := c.Indptr[i]; p < c.Indptr[i+1]; p++ {
			out.Set(i, int(c.Indices[p]), c.Data[p])
		}
	}
	return out, nil
}

// SelectRows returns a new CSR holding the listed rows in order.
func (c *CSR) SelectRows(rows []int) (*CSR, error) {
	out := &CSR{
		Rows:   len(rows),
		Cols:   c.Cols,
		Indptr: make([]int32, len(rows)+1),
	}
	for i, ri := range rows {
		if ri < 0 || ri >= c.Rows {
			return nil, errors.Newf(errors.CodeTargetOutOfRange,
				"row index %d out of range [0, %d)", ri, c.Rows)
		}
		start, end := c.Indptr[ri], c.Indptr[ri+1]
		out.Data = append(out.Data, c.Data[start:end]...)
		out.Indices = append(out.Indices, c.Indices[start:end]...)
		out.Indptr[i+1] = int32(len(out.Data))
	}
	return out, nil
}
