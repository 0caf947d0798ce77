// Package npy persists feature matrices in the NumPy ecosystem formats:
// dense matrices as .npy files and compressed sparse row matrices as .npz
// archives with the scipy member layout (data, indices, indptr, shape), so
// fingerprints written here load back with scientific-Python tooling and vice
// versa.
package npy

import (
	"archive/zip"
	"bytes"
	"io"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemSplit-QC/internal/domain/dataset"
	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// SaveDense writes m to path as a 2-D float64 .npy file.
func SaveDense(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeMatrixIO, "failed to create npy file")
	}
	defer f.Close()

	if err := npyio.Write(f, m); err != nil {
		return errors.Wrap(err, errors.CodeMatrixIO, "failed to write npy data")
	}
	return f.Close()
}

// LoadDense reads a 2-D .npy file written by SaveDense or NumPy.
func LoadDense(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMatrixIO, "failed to open npy file")
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, errors.Wrap(err, errors.CodeCorruptMatrix, "failed to read npy data")
	}
	return &m, nil
}

// scipy member names inside an .npz archive.
const (
	memberData    = "data.npy"
	memberIndices = "indices.npy"
	memberIndptr  = "indptr.npy"
	memberShape   = "shape.npy"
)

// SaveCSR writes a sparse matrix to path as an .npz archive readable by
// scipy.sparse.load_npz.
func SaveCSR(path string, c *dataset.CSR) error {
	if err := c.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeMatrixIO, "failed to create npz file")
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	members := []struct {
		name  string
		value interface{}
	}{
		{memberData, c.Data},
		{memberIndices, c.Indices},
		{memberIndptr, c.Indptr},
		{memberShape, []int64{int64(c.Rows), int64(c.Cols)}},
	}
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			return errors.Wrap(err, errors.CodeMatrixIO, "failed to add npz member "+m.name)
		}
		if err := npyio.Write(w, m.value); err != nil {
			return errors.Wrap(err, errors.CodeMatrixIO, "failed to write npz member "+m.name)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, errors.CodeMatrixIO, "failed to finalize npz archive")
	}
	return f.Close()
}

// LoadCSR reads an .npz sparse matrix.  Index members are accepted as either
// int32 or int64, since scipy picks the width from the matrix size.
func LoadCSR(path string) (*dataset.CSR, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMatrixIO, "failed to open npz file")
	}
	defer zr.Close()

	members := map[string][]byte{}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCorruptMatrix, "failed to open npz member "+zf.Name)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCorruptMatrix, "failed to read npz member "+zf.Name)
		}
		members[zf.Name] = raw
	}

	for _, name := range []string{memberData, memberIndices, memberIndptr, memberShape} {
		if _, ok := members[name]; !ok {
			return nil, errors.New(errors.CodeCorruptMatrix, "npz archive is missing member "+name)
		}
	}

	c := &dataset.CSR{}
	if err := npyio.Read(bytes.NewReader(members[memberData]), &c.Data); err != nil {
		return nil, errors.Wrap(err, errors.CodeCorruptMatrix, "failed to decode data member")
	}
	if c.Indices, err = readIntMember(members[memberIndices], memberIndices); err != nil {
		return nil, err
	}
	if c.Indptr, err = readIntMember(members[memberIndptr], memberIndptr); err != nil {
		return nil, err
	}

	shape, err := readIntMember(members[memberShape], memberShape)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, errors.Newf(errors.CodeCorruptMatrix, "shape member has %d entries, want 2", len(shape))
	}
	c.Rows = int(shape[0])
	c.Cols = int(shape[1])

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// readIntMember decodes an integer .npy member, trying int32 first and
// falling back to int64.
func readIntMember(raw []byte, name string) ([]int32, error) {
	var v32 []int32
	if err := npyio.Read(bytes.NewReader(raw), &v32); err == nil {
		return v32, nil
	}
	var v64 []int64
	if err := npyio.Read(bytes.NewReader(raw), &v64); err != nil {
		return nil, errors.Wrap(err, errors.CodeCorruptMatrix, "failed to decode member "+name)
	}
	out := make([]int32, len(v64))
	for i, v := range v64 {
		out[i] = int32(v)
	}
	return out, nil
}
