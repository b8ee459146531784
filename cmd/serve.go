package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0up4200/mixwatch/exporter"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Prometheus exporter",
	Long: `Serve Mix device readings as Prometheus metrics. The Growatt API is queried on
every scrape; an expired session is renewed automatically.`,
	PreRunE: requireMixSerial,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	listen := cfg.Exporter.Listen
	if cmd.Flags().Changed("listen") {
		listen = listenAddr
	}

	collector := exporter.NewCollector(growattClient, exporter.Target{
		Username:       cfg.Growatt.Username,
		Password:       cfg.Growatt.Password,
		PasswordHashed: cfg.Growatt.PasswordHashed,
		MixSerial:      cfg.Growatt.MixSerial,
		PlantID:        cfg.Growatt.PlantID,
	}, logger.With().Str("component", "exporter").Logger())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exporter.NewServer(listen, cfg.Exporter.MetricsPath, collector, logger).Run(ctx)
}
