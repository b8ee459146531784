package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/mixwatch/filter"
)

var chartFilterExpr string

// chartCmd represents the chart command
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Print the Mix energy chart",
	Long: `Fetch the production and consumption chart of the Mix device and print the
points matching a filter expression.

Each chart point exposes its fields as variables, plus Time for the point's key:

  mixwatch chart --filter 'sysOut != "0"'
  mixwatch chart --timespan day --date 2026-10 --filter 'num(ppv) > 1000'
  mixwatch chart --filter 'Time >= "12:00" and num(userLoad) > 500'`,
	PreRunE: requireMixSerial,
	RunE:    runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().StringVarP(&chartFilterExpr, "filter", "f", "", "filter expression (default from config)")
	chartCmd.Flags().StringVar(&timespanFlag, "timespan", "", "hour, day or month (default from config)")
	chartCmd.Flags().StringVar(&dateFlag, "date", "", "date as YYYY-MM-DD or YYYY-MM (default today)")
}

func runChart(cmd *cobra.Command, args []string) error {
	expression := cfg.Chart.Filter
	if cmd.Flags().Changed("filter") {
		expression = chartFilterExpr
	}

	chartFilter, err := filter.Compile(expression)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}

	params, err := requestParams(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, plant, err := loginAndResolve(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("filter", chartFilter.String()).
		Str("timespan", params.Timespan.String()).
		Str("date", params.Timespan.FormatDate(params.Date)).
		Msg("Fetching chart")

	chart, err := growattClient.FetchChart(ctx, sess, params.MixSN, plant.ID, params.Timespan, params.Date)
	if err != nil {
		return err
	}

	entries, err := chartFilter.Apply(chart)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No chart points match the filter.")
		return nil
	}

	fmt.Fprintf(out, "\nFound %d chart points:\n", len(entries))
	for _, entry := range entries {
		fmt.Fprintf(out, "Time: %s Val: %s\n", entry.Time, entry.Fields)
	}
	return nil
}
