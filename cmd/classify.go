package cmd

import (
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/export"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/pipeline"
	"github.com/spf13/cobra"
)

func newClassifyCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "classify FILE...",
		Short: "Classify exports and write one record per domain",
		Long: `Classify reads one or more CSV or XLSX spam-check exports, classifies every
row against the keyword rule set and writes the consolidated records.

Without --output the file is written to <output.dir>/<YYYYMMDD>_spam_checker.<format>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := newCommandDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			res, err := deps.Runner.ConsolidateFiles(ctx, args)
			if err != nil {
				return fmt.Errorf("consolidate: %w", err)
			}

			return finishRun(cmd, deps, "classify", args, output, res)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .xlsx)")
	return cmd
}

// finishRun writes the records, persists them when a store is enabled and
// prints the summary.
func finishRun(cmd *cobra.Command, deps *commandDeps, command string, sources []string, output string, res *pipeline.Result) error {
	if output == "" {
		output = export.DatedPath(deps.Config.Output.Dir, time.Now(), deps.Config.OutputFormat())
	}

	if err := export.WriteFile(output, res.Records); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	deps.Logger.Info("Output written",
		logger.String("path", output),
		logger.Int("records", len(res.Records)),
	)

	if err := deps.persist(cmd.Context(), command, sources, res); err != nil {
		return err
	}
	deps.writeMetrics()

	renderSummary(cmd.OutOrStdout(), res)
	return nil
}
