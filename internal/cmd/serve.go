package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	httpadapter "github.com/couchcryptid/perfect-day/internal/adapter/http"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "serve <observations.csv>",
		Short: "Compute the report once and serve it over HTTP",
		Long: `Serve computes the report at startup and exposes it on /report next to
/healthz, /readyz and /metrics until interrupted. /readyz turns healthy once
the report is available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, logger, err := setup(&flags)
			if err != nil {
				return err
			}
			m := processMetrics()

			srv := httpadapter.NewServer(cfg.HTTPAddr, logger)
			serveErr := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			shutdown := func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("http server shutdown error", "error", err)
				}
				logger.Info("shutdown complete")
			}

			rep, err := runAnalysis(ctx, cfg, &flags, args[0], logger, m)
			if err != nil {
				shutdown()
				return err
			}
			srv.SetReport(rep)

			if flags.publish {
				if err := publish(ctx, cfg, rep, logger, m); err != nil {
					logger.Error("report publish failed", "error", err)
				}
			}

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
			case err := <-serveErr:
				shutdown()
				return fmt.Errorf("http server: %w", err)
			}
			shutdown()
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
