// Package bias provides the application-level service that evaluates the
// AVE/VE bias of a cluster-based train/test split over a fingerprint matrix.
package bias

import (
	"context"
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	domainbias "github.com/turtacn/ChemSplit-QC/internal/domain/bias"
	"github.com/turtacn/ChemSplit-QC/internal/domain/dataset"
	"github.com/turtacn/ChemSplit-QC/internal/domain/similarity"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/index/hnsw"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/storage/npy"
	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// Service defines the split bias evaluation pipeline.
type Service interface {
	Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateResult, error)
}

// EvaluateInput configures one evaluation.
type EvaluateInput struct {
	// FeaturesPath is the sparse feature matrix (.npz) produced by the
	// fingerprint pipeline.
	FeaturesPath string
	// LabelsPath is the sparse binary label matrix (.npz), row-aligned with
	// the features.
	LabelsPath string
	// ClustersPath is a one-column file with the integer cluster id of each
	// row.
	ClustersPath string
	// Target selects the label column to evaluate.
	Target int
	// Metric names the distance metric (jaccard or dice).
	Metric string
	// TestFraction is the share of clusters held out per class.
	TestFraction float64
	// Seed fixes the cluster shuffle.
	Seed int64
	// Neighbors is the per-row neighbor count on the approximate path.
	Neighbors int
	// ApproxThreshold is the group size past which the approximate path
	// engages; zero means the default.
	ApproxThreshold int
	// HNSW parameterises the approximate index.
	HNSW hnsw.Config
}

// GroupSizes reports the four split group populations.
type GroupSizes struct {
	ActivesTest    int `json:"actives_test"`
	ActivesTrain   int `json:"actives_train"`
	InactivesTest  int `json:"inactives_test"`
	InactivesTrain int `json:"inactives_train"`
}

// EvaluateResult holds the two bias scores for one split.
type EvaluateResult struct {
	RunID    string        `json:"run_id"`
	Target   int           `json:"target"`
	Metric   string        `json:"metric"`
	AVE      float64       `json:"ave"`
	VE       float64       `json:"ve"`
	Approx   bool          `json:"approximate_path"`
	Groups   GroupSizes    `json:"groups"`
	Clusters int           `json:"clusters"`
	Elapsed  time.Duration `json:"elapsed"`
}

type serviceImpl struct {
	logger logging.Logger
}

// NewService creates the evaluation service.
func NewService(logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{logger: logger.Named("bias")}
}

// Evaluate loads features, labels, and cluster assignments, draws a
// cluster-granular split, computes the four distance matrices under the
// configured provider, and reduces them to the AVE and VE scores.
func (s *serviceImpl) Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	metric, err := similarity.ParseMetric(input.Metric)
	if err != nil {
		return nil, err
	}

	x, y, err := loadAligned(input.FeaturesPath, input.LabelsPath)
	if err != nil {
		return nil, err
	}
	clusters, err := ReadClusterColumn(input.ClustersPath)
	if err != nil {
		return nil, err
	}
	xr, _ := x.Dims()
	if len(clusters) != xr {
		return nil, errors.Newf(errors.CodeRowMisaligned,
			"cluster assignment has %d entries but feature matrix has %d rows", len(clusters), xr)
	}

	s.logger.Info("starting bias evaluation",
		logging.String("run_id", runID),
		logging.Int("rows", xr),
		logging.Int("target", input.Target),
		logging.String("metric", string(metric)),
		logging.Float64("test_fraction", input.TestFraction),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posClusters, negClusters, err := classifyClusters(y, input.Target, clusters)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(input.Seed))
	testClusters, trainClusters := dataset.SplitClusters(
		posClusters, negClusters, input.TestFraction, input.TestFraction, rng)

	aTest, aTrain, iTest, iTrain, err := dataset.GroupIndices(
		y, input.Target, clusters, testClusters, trainClusters)
	if err != nil {
		return nil, err
	}
	sizes := GroupSizes{
		ActivesTest:    len(aTest),
		ActivesTrain:   len(aTrain),
		InactivesTest:  len(iTest),
		InactivesTrain: len(iTrain),
	}

	provider := similarity.ChooseProvider(metric, input.Neighbors, input.HNSW,
		input.ApproxThreshold, len(aTest), len(aTrain), len(iTest), len(iTrain))
	_, approx := provider.(similarity.ApproxProvider)

	quartet, err := buildQuartet(x, provider, aTest, aTrain, iTest, iTrain)
	if err != nil {
		return nil, err
	}

	ave, err := domainbias.CalcAVE(quartet)
	if err != nil {
		return nil, err
	}
	ve, err := domainbias.CalcVE(quartet)
	if err != nil {
		return nil, err
	}

	result := &EvaluateResult{
		RunID:    runID,
		Target:   input.Target,
		Metric:   string(metric),
		AVE:      ave,
		VE:       ve,
		Approx:   approx,
		Groups:   sizes,
		Clusters: len(posClusters) + len(negClusters),
		Elapsed:  time.Since(start),
	}
	s.logger.Info("bias evaluation complete",
		logging.String("run_id", runID),
		logging.Float64("ave", ave),
		logging.Float64("ve", ve),
		logging.Bool("approximate_path", approx),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// loadAligned loads the sparse feature and label matrices and checks row
// alignment.
func loadAligned(featuresPath, labelsPath string) (x, y *mat.Dense, err error) {
	xCSR, err := npy.LoadCSR(featuresPath)
	if err != nil {
		return nil, nil, err
	}
	yCSR, err := npy.LoadCSR(labelsPath)
	if err != nil {
		return nil, nil, err
	}
	if xCSR.Rows != yCSR.Rows {
		return nil, nil, errors.Newf(errors.CodeRowMisaligned,
			"feature matrix has %d rows but label matrix has %d", xCSR.Rows, yCSR.Rows)
	}
	if x, err = xCSR.ToDense(); err != nil {
		return nil, nil, err
	}
	if y, err = yCSR.ToDense(); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// classifyClusters partitions the distinct cluster ids by class: a cluster
// with at least one positive row for the target counts as positive.  The two
// lists are disjoint by construction, which SplitClusters relies on.
func classifyClusters(y *mat.Dense, target int, clusters []int) (pos, neg []int, err error) {
	yr, yc := y.Dims()
	if target < 0 || target >= yc {
		return nil, nil, errors.Newf(errors.CodeTargetOutOfRange,
			"target column %d out of range [0, %d)", target, yc)
	}

	hasPositive := map[int]bool{}
	seen := []int{}
	for i := 0; i < yr; i++ {
		c := clusters[i]
		if _, ok := hasPositive[c]; !ok {
			hasPositive[c] = false
			seen = append(seen, c)
		}
		if y.At(i, target) > 0 {
			hasPositive[c] = true
		}
	}
	for _, c := range seen {
		if hasPositive[c] {
			pos = append(pos, c)
		} else {
			neg = append(neg, c)
		}
	}
	if len(pos) == 0 {
		return nil, nil, errors.New(errors.CodeEmptyClass,
			"no cluster contains a positive row for the target")
	}
	return pos, neg, nil
}

// buildQuartet runs the four group-versus-group distance computations.
func buildQuartet(x *mat.Dense, provider similarity.DistanceProvider, aTest, aTrain, iTest, iTrain []int) (*domainbias.DistanceQuartet, error) {
	groups := map[string]*mat.Dense{}
	for name, rows := range map[string][]int{
		"actives_test":    aTest,
		"actives_train":   aTrain,
		"inactives_test":  iTest,
		"inactives_train": iTrain,
	} {
		m, err := dataset.SelectRows(x, rows)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Newf(errors.CodeEmptyGroup, "the %s group is empty", name)
		}
		groups[name] = m
	}

	q := &domainbias.DistanceQuartet{}
	var err error
	if q.ActivesTestActivesTrain, err = provider.Distances(groups["actives_test"], groups["actives_train"]); err != nil {
		return nil, err
	}
	if q.ActivesTestInactivesTrain, err = provider.Distances(groups["actives_test"], groups["inactives_train"]); err != nil {
		return nil, err
	}
	if q.InactivesTestInactivesTrain, err = provider.Distances(groups["inactives_test"], groups["inactives_train"]); err != nil {
		return nil, err
	}
	if q.InactivesTestActivesTrain, err = provider.Distances(groups["inactives_test"], groups["actives_train"]); err != nil {
		return nil, err
	}
	return q, nil
}

// ReadClusterColumn reads the integer cluster id of each row from the first
// column of a headerless delimited file.
func ReadClusterColumn(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCSVParse, "failed to open cluster file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCSVParse, "failed to read cluster row")
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCSVParse,
				"cluster id is not an integer: "+record[0])
		}
		out = append(out, id)
	}
	return out, nil
}
