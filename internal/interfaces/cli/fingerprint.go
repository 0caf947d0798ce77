package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSplit-QC/internal/application/fingerprint"
)

// NewFingerprintCmd creates the fingerprint subcommand.
func NewFingerprintCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		limit      int
		workers    int
		smooth     bool
	)

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Compute CATS fingerprints for a SMILES corpus",
		Long: "Reads one SMILES string per row from the input file, computes the 280-column\n" +
			"CATS pharmacophore fingerprint per molecule, and writes the row-aligned sparse\n" +
			"matrix as an .npz archive.  Unparseable rows are skipped with a warning and\n" +
			"reported in the summary.",
		Example: `  chemsplit fingerprint -i allSmiles.csv -O cats.npz
  chemsplit fingerprint -i allSmiles.csv -O cats.npz --limit 1000 --smooth`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cfg := cliCtx.Config
			if workers == 0 {
				workers = cfg.Pipeline.Workers
			}
			if limit == 0 {
				limit = cfg.Pipeline.Limit
			}
			if !cmd.Flags().Changed("smooth") {
				smooth = cfg.Fingerprint.Smooth
			}

			svc := fingerprint.NewService(cliCtx.Logger)
			result, err := svc.Run(cmd.Context(), &fingerprint.RunInput{
				InputPath:  inputPath,
				OutputPath: outputPath,
				Limit:      limit,
				Workers:    workers,
				Smooth:     smooth,
			})
			if err != nil {
				return err
			}

			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, result)
			}
			return PrintResult(cmd, fmt.Sprintf(
				"fingerprinted %d/%d molecules (%d skipped) into %s [%d columns, %s]",
				result.Computed, result.Total, result.Skipped,
				result.OutputPath, result.Dimensions, result.Elapsed.Round(time.Millisecond)))
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV with SMILES in the first column (required)")
	cmd.Flags().StringVarP(&outputPath, "out", "O", "", "output .npz path (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "process only the first N rows (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel fingerprint workers (0 = config default)")
	cmd.Flags().BoolVar(&smooth, "smooth", false, "use the Gaussian-smoothed histogram variant")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
