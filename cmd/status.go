package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/mixwatch/filter"
	"github.com/s0up4200/mixwatch/growatt"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current state of the Mix device",
	Long: `Log in, pick the plant and print today's chart points with output, the live
power flows, the battery charge level and today's energy totals.`,
	PreRunE: requireMixSerial,
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport holds everything the status command prints
type statusReport struct {
	Plant     growatt.Plant
	Chart     []filter.Entry
	Status    growatt.Value
	Info      growatt.Value
	Dashboard growatt.Value
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()
	mixSN := cfg.Growatt.MixSerial

	sess, plant, err := loginAndResolve(ctx)
	if err != nil {
		return err
	}

	chartFilter, err := filter.Compile(cfg.Chart.Filter)
	if err != nil {
		return fmt.Errorf("invalid chart filter: %w", err)
	}

	report := statusReport{Plant: plant}

	chart, err := growattClient.FetchChart(ctx, sess, mixSN, plant.ID, growatt.TimespanHour, now)
	if err != nil {
		return fmt.Errorf("failed to fetch chart: %w", err)
	}
	if report.Chart, err = chartFilter.Apply(chart); err != nil {
		return err
	}

	if report.Status, err = growattClient.FetchMixStatus(ctx, sess, mixSN, plant.ID); err != nil {
		return fmt.Errorf("failed to fetch mix status: %w", err)
	}
	if report.Info, err = growattClient.FetchMixDetail(ctx, sess, mixSN, plant.ID); err != nil {
		return fmt.Errorf("failed to fetch mix info: %w", err)
	}
	if report.Dashboard, err = growattClient.FetchDashboard(ctx, sess, plant.ID, growatt.TimespanHour, now); err != nil {
		return fmt.Errorf("failed to fetch dashboard: %w", err)
	}

	printStatus(cmd.OutOrStdout(), cfg.Chart.Filter, report)
	return nil
}

func printStatus(w io.Writer, filterExpr string, r statusReport) {
	fmt.Fprintf(w, "\n--- Timedata (%s) ---\n", filterExpr)
	for _, entry := range r.Chart {
		fmt.Fprintf(w, "Time: %s Val: %s\n", entry.Time, entry.Fields)
	}

	fmt.Fprintln(w, "\n--- Mix System Status ---")
	fmt.Fprintf(w, "PV Power           : %s W\n", r.Status.Get("ppv").Str())
	fmt.Fprintf(w, "From Grid          : %s W\n", r.Status.Get("pactouser").Str())
	fmt.Fprintf(w, "House Consumption  : %s W\n", r.Status.Get("pLocalLoad").Str())
	fmt.Fprintf(w, "From Battery       : %s W\n", r.Status.Get("pdisCharge1").Str())

	fmt.Fprintln(w, "\n--- Mix Info ---")
	fmt.Fprintf(w, "Battery Charge Level: %s%%\n", r.Info.Get("soc").Str())
	// todayEnergy already carries its unit
	fmt.Fprintf(w, "Production Today    : %s\n", r.Plant.Record.Get("todayEnergy").Str())

	fmt.Fprintln(w, "\n--- Dashboard Data ---")
	fmt.Fprintf(w, "Total Power Load      : %s kWh\n", r.Dashboard.Get("elocalLoad").Str())
	fmt.Fprintf(w, "PV Power Load Today   : %s kWh\n", r.Dashboard.Get("eChargeToday1").Str())
	fmt.Fprintf(w, "Grid Power Load Today : %s kWh\n", r.Dashboard.Get("etouser").Str())
}
