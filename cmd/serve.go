package cmd

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/api"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/logging"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			deps, err := newCommandDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			handlerCfg := api.HandlerConfig{
				Classifier:     deps.Classifier,
				Runner:         deps.Runner,
				Collator:       deps.Consolidator.Collator(),
				MaxUploadBytes: deps.Config.Server.MaxUploadBytes,
			}
			// A nil *store.Store must not become a non-nil interface.
			if deps.Store != nil {
				handlerCfg.Store = deps.Store
			}

			handler := api.NewHandler(handlerCfg, logging.NewAdapter(deps.Logger))
			server := api.NewServer(handler, deps.Config, deps.Telemetry.Handler(), deps.Logger)

			if err = server.RunWithGracefulShutdown(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
}
