package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCollateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "collate FILE...",
		Short: "Merge previously written output files",
		Long: `Collate reads consolidated output files, for example from several date
buckets, and merges them into one record per domain without re-classifying.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := newCommandDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			res, err := deps.Runner.CollateFiles(ctx, args)
			if err != nil {
				return fmt.Errorf("collate: %w", err)
			}

			return finishRun(cmd, deps, "collate", args, output, res)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .xlsx)")
	return cmd
}
