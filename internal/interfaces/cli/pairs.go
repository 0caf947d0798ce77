package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSplit-QC/internal/domain/molecule"
)

// NewPairsCmd creates the pairs subcommand, which documents the fixed
// fingerprint column layout.
func NewPairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "Print the fingerprint type-pair column layout",
		Long: "Prints the 28 pharmacophore type-pair keys in their fixed enumeration order\n" +
			"together with the column ranges their distance buckets occupy.  Downstream\n" +
			"tooling can use this to label the 280 feature columns.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			keys := molecule.PairKeys()
			if cliCtx.OutputFormat == "json" {
				type block struct {
					Key   string `json:"key"`
					Index int    `json:"index"`
					From  int    `json:"column_from"`
					To    int    `json:"column_to"`
				}
				blocks := make([]block, len(keys))
				for i, k := range keys {
					blocks[i] = block{
						Key:   k,
						Index: i,
						From:  i * molecule.NumBuckets,
						To:    (i+1)*molecule.NumBuckets - 1,
					}
				}
				return PrintResult(cmd, blocks)
			}

			var b strings.Builder
			for i, k := range keys {
				fmt.Fprintf(&b, "%2d  %s  columns %3d-%3d\n",
					i, k, i*molecule.NumBuckets, (i+1)*molecule.NumBuckets-1)
			}
			return PrintResult(cmd, strings.TrimRight(b.String(), "\n"))
		},
	}
}
