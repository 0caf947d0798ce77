package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSplit-QC/internal/application/bias"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/index/hnsw"
)

// NewBiasCmd creates the bias subcommand.
func NewBiasCmd() *cobra.Command {
	var (
		featuresPath string
		labelsPath   string
		clustersPath string
		target       int
		metric       string
		testFraction float64
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "bias",
		Short: "Score a cluster-based train/test split for AVE and VE bias",
		Long: "Loads a sparse feature matrix, a row-aligned binary label matrix, and a\n" +
			"cluster assignment, draws a cluster-granular train/test split for the chosen\n" +
			"target column, and reports the AVE and VE nearest-neighbor leakage scores.\n" +
			"Large groups are compared through an approximate neighbor index instead of\n" +
			"dense distance matrices.",
		Example: `  chemsplit bias -x cats.npz -y labels.npz --clusters clusters.csv --target 3
  chemsplit bias -x cats.npz -y labels.npz --clusters clusters.csv --metric jaccard -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cfg := cliCtx.Config
			if metric == "" {
				metric = cfg.Similarity.Metric
			}
			if testFraction == 0 {
				testFraction = cfg.Bias.TestFraction
			}
			if seed == 0 {
				seed = cfg.Bias.Seed
			}

			svc := bias.NewService(cliCtx.Logger)
			result, err := svc.Evaluate(cmd.Context(), &bias.EvaluateInput{
				FeaturesPath:    featuresPath,
				LabelsPath:      labelsPath,
				ClustersPath:    clustersPath,
				Target:          target,
				Metric:          metric,
				TestFraction:    testFraction,
				Seed:            seed,
				Neighbors:       cfg.Similarity.Neighbors,
				ApproxThreshold: cfg.Similarity.ApproxThreshold,
				HNSW: hnsw.Config{
					M:              cfg.Similarity.HNSW.M,
					Mmax:           cfg.Similarity.HNSW.M,
					Mmax0:          cfg.Similarity.HNSW.M * 2,
					EfConstruction: cfg.Similarity.HNSW.EfConstruction,
					EfSearch:       cfg.Similarity.HNSW.EfSearch,
					Ml:             cfg.Similarity.HNSW.Ml,
					Seed:           cfg.Similarity.HNSW.Seed,
				},
			})
			if err != nil {
				return err
			}

			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, result)
			}
			return PrintResult(cmd, fmt.Sprintf(
				"target %d (%s): AVE = %.6f, VE = %.6f  [aTest=%d aTrain=%d iTest=%d iTrain=%d, approx=%v]",
				result.Target, result.Metric, result.AVE, result.VE,
				result.Groups.ActivesTest, result.Groups.ActivesTrain,
				result.Groups.InactivesTest, result.Groups.InactivesTrain,
				result.Approx))
		},
	}

	cmd.Flags().StringVarP(&featuresPath, "features", "x", "", "sparse feature matrix .npz (required)")
	cmd.Flags().StringVarP(&labelsPath, "labels", "y", "", "sparse binary label matrix .npz (required)")
	cmd.Flags().StringVar(&clustersPath, "clusters", "", "per-row cluster id file (required)")
	cmd.Flags().IntVar(&target, "target", 0, "label column to evaluate")
	cmd.Flags().StringVar(&metric, "metric", "", "distance metric: jaccard or dice (default from config)")
	cmd.Flags().Float64Var(&testFraction, "test-fraction", 0, "held-out cluster fraction per class (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "cluster shuffle seed (default from config)")
	_ = cmd.MarkFlagRequired("features")
	_ = cmd.MarkFlagRequired("labels")
	_ = cmd.MarkFlagRequired("clusters")

	return cmd
}
