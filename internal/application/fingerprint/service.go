// Package fingerprint provides the application-level service that turns a
// SMILES corpus into a persisted sparse CATS feature matrix.  This is the
// layer between the CLI and the molecule domain logic.
package fingerprint

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ChemSplit-QC/internal/domain/dataset"
	"github.com/turtacn/ChemSplit-QC/internal/domain/molecule"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/storage/npy"
	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// Service defines the fingerprint batch pipeline.
type Service interface {
	Run(ctx context.Context, input *RunInput) (*RunResult, error)
}

// RunInput configures one pipeline run.
type RunInput struct {
	// InputPath is a delimited text file with one SMILES string per row in
	// the first column.
	InputPath string
	// OutputPath receives the sparse feature matrix as an .npz archive.
	OutputPath string
	// Limit restricts the run to the first N rows when positive.
	Limit int
	// Workers bounds the fingerprinting parallelism.
	Workers int
	// Smooth selects the Gaussian-kernel histogram variant.
	Smooth bool
}

// RunResult summarises a completed run.
type RunResult struct {
	RunID      string        `json:"run_id"`
	Total      int           `json:"total"`
	Computed   int           `json:"computed"`
	Skipped    int           `json:"skipped"`
	Dimensions int           `json:"dimensions"`
	OutputPath string        `json:"output_path"`
	Elapsed    time.Duration `json:"elapsed"`
}

type serviceImpl struct {
	logger logging.Logger
}

// NewService creates the pipeline service.
func NewService(logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{logger: logger.Named("fingerprint")}
}

// Run reads the corpus, fingerprints every molecule in parallel, and persists
// the row-aligned sparse matrix.  A molecule that fails to parse is skipped
// with a warning; rows keep their input positions, skipped rows stay all-zero
// and are counted in the result.
func (s *serviceImpl) Run(ctx context.Context, input *RunInput) (*RunResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	smiles, err := ReadSMILESColumn(input.InputPath, input.Limit)
	if err != nil {
		return nil, err
	}
	s.logger.Info("starting fingerprint run",
		logging.String("run_id", runID),
		logging.String("input", input.InputPath),
		logging.Int("molecules", len(smiles)),
		logging.Int("workers", input.Workers),
		logging.Bool("smooth", input.Smooth),
	)

	rows := make([][]float64, len(smiles))
	var skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	workers := input.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	opts := molecule.CATSOptions{Smooth: input.Smooth}
	for i, smi := range smiles {
		i, smi := i, smi
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mol, err := molecule.ParseSMILES(smi)
			if err != nil {
				skipped.Add(1)
				s.logger.Warn("skipping unparseable molecule",
					logging.String("run_id", runID),
					logging.Int("row", i),
					logging.String("smiles", smi),
					logging.Err(err),
				)
				rows[i] = make([]float64, molecule.FingerprintDim)
				return nil
			}
			fp, err := molecule.CATS(mol, opts)
			if err != nil {
				skipped.Add(1)
				s.logger.Warn("skipping molecule that failed to fingerprint",
					logging.String("run_id", runID),
					logging.Int("row", i),
					logging.Err(err),
				)
				rows[i] = make([]float64, molecule.FingerprintDim)
				return nil
			}
			rows[i] = fp[:]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeFingerprintBatch, "fingerprint run aborted")
	}

	numSkipped := int(skipped.Load())
	if len(smiles) > 0 && numSkipped == len(smiles) {
		return nil, errors.New(errors.CodeAllInputsSkipped,
			"every input failed to parse").WithDetail(input.InputPath)
	}

	csr, err := dataset.NewCSRFromRows(rows, molecule.FingerprintDim)
	if err != nil {
		return nil, err
	}
	if err := npy.SaveCSR(input.OutputPath, csr); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:      runID,
		Total:      len(smiles),
		Computed:   len(smiles) - numSkipped,
		Skipped:    numSkipped,
		Dimensions: molecule.FingerprintDim,
		OutputPath: input.OutputPath,
		Elapsed:    time.Since(start),
	}
	s.logger.Info("fingerprint run complete",
		logging.String("run_id", runID),
		logging.Int("computed", result.Computed),
		logging.Int("skipped", result.Skipped),
		logging.Int("nnz", csr.NNZ()),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// ReadSMILESColumn reads the first column of a headerless delimited file,
// returning at most limit rows when limit is positive.
func ReadSMILESColumn(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCSVParse, "failed to open input file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []string
	for {
		if limit > 0 && len(out) >= limit {
			break
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCSVParse, "failed to read input row")
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		out = append(out, record[0])
	}
	return out, nil
}
