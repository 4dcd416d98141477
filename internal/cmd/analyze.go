package cmd

import (
	"github.com/couchcryptid/perfect-day/internal/report"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		flags  analysisFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze <observations.csv>",
		Short: "Report the most enjoyable day of the year",
		Long: `Analyze a station's hourly observations and print the day of the year
with the highest expected enjoyment for the chosen factors.

Preferences are derived from the daytime history unless overridden:

  perfectday analyze fcl01.csv -f Air_Temp -f RH --pref Air_Temp=72:8 --range RH=0.25:0.45`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			resolved, err := resolveFormat(format, out)
			if err != nil {
				return err
			}

			cfg, logger, err := setup(&flags)
			if err != nil {
				return err
			}
			m := processMetrics()

			rep, err := runAnalysis(cmd.Context(), cfg, &flags, args[0], logger, m)
			if err != nil {
				return err
			}

			if flags.publish {
				if err := publish(cmd.Context(), cfg, rep, logger, m); err != nil {
					return err
				}
			}

			if resolved == formatText {
				return report.WriteText(out, rep)
			}
			return report.WriteJSON(out, rep)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", formatAuto, "Output format: auto, text or json")
	return cmd
}
