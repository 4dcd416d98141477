package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/perfect-day/internal/analyzer"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "perfectday",
		Short: "Find the day of the year you are most likely to enjoy",
		Long: `perfectday reads a weather station's hourly history, learns what a
typical daytime looks like, scores every reading against your comfort
preferences, and reports the calendar day with the highest expected enjoyment.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(newAnalyzeCmd(), newServeCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// Execute runs the CLI. Caller mistakes such as an unknown variable exit
// with status 2; everything else exits with 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if analyzer.IsUserError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
