package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/s0up4200/mixwatch/config"
	"github.com/s0up4200/mixwatch/growatt"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	growattClient *growatt.Client

	// Persistent flags
	username       string
	password       string
	passwordHashed bool
	mixSerial      string
	plantID        string
	serverURL      string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mixwatch",
	Short: "Read live data from a Growatt Mix inverter",
	Long: `mixwatch talks to the Growatt mobile API to report the state of a Mix
hybrid inverter: PV production, grid import, house consumption and battery charge.

It can print a one-off status report, dump raw endpoint data, or run as a
Prometheus exporter.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.StringVar(&username, "username", "", "Growatt username")
	flags.StringVar(&password, "password", "", "Growatt password")
	flags.BoolVar(&passwordHashed, "password-hashed", false, "the password is already hashed")
	flags.StringVar(&mixSerial, "mixsn", "", "Mix serial number")
	flags.StringVar(&plantID, "plant", "", "plant id (default is the first plant of the account)")
	flags.StringVar(&serverURL, "server", "", "Growatt server URL")
}

// initializeApp loads the configuration and creates the Growatt client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = setupLogger(cfg.Logging)

	growattClient, err = newGrowattClient(cfg.Growatt, logger)
	if err != nil {
		return fmt.Errorf("failed to create Growatt client: %w", err)
	}

	return nil
}

// applyFlags lets command line flags win over the config file and environment
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.Growatt.Username = username
	}
	if flags.Changed("password") {
		cfg.Growatt.Password = password
	}
	if flags.Changed("password-hashed") {
		cfg.Growatt.PasswordHashed = passwordHashed
	}
	if flags.Changed("mixsn") {
		cfg.Growatt.MixSerial = mixSerial
	}
	if flags.Changed("plant") {
		cfg.Growatt.PlantID = plantID
	}
	if flags.Changed("server") {
		cfg.Growatt.ServerURL = serverURL
	}
}

func newGrowattClient(gc config.GrowattConfig, logger zerolog.Logger) (*growatt.Client, error) {
	opts := []growatt.Option{
		growatt.WithBaseURL(gc.ServerURL),
		growatt.WithTimeout(gc.Timeout),
	}
	if gc.UserAgent != "" {
		opts = append(opts, growatt.WithUserAgent(gc.UserAgent))
	}
	if gc.RandomUserSuffix {
		opts = append(opts, growatt.WithRandomUserSuffix())
	}
	if gc.RateLimit > 0 {
		opts = append(opts, growatt.WithRateLimit(rate.Limit(gc.RateLimit), gc.RateBurst))
	}

	return growatt.NewClient(logger.With().Str("component", "growatt").Logger(), opts...)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// requireMixSerial guards the commands that read the Mix device
func requireMixSerial(cmd *cobra.Command, args []string) error {
	return cfg.RequireMixSerial()
}

// needsMixSerial reports whether an endpoint sends the mix serial number
func needsMixSerial(ep growatt.Endpoint) bool {
	for _, field := range ep.Fields {
		if field == growatt.FieldMixSN {
			return true
		}
	}
	return false
}

// login authenticates with the configured credentials
func login(ctx context.Context) (*growatt.Session, error) {
	if cfg.Growatt.PasswordHashed {
		return growattClient.LoginHashed(ctx, cfg.Growatt.Username, cfg.Growatt.Password)
	}
	return growattClient.Login(ctx, cfg.Growatt.Username, cfg.Growatt.Password)
}

// loginAndResolve logs in and picks the plant to work on
func loginAndResolve(ctx context.Context) (*growatt.Session, growatt.Plant, error) {
	sess, err := login(ctx)
	if err != nil {
		return nil, growatt.Plant{}, err
	}

	plant, err := growattClient.ResolvePlant(ctx, sess, cfg.Growatt.PlantID)
	if err != nil {
		return nil, growatt.Plant{}, fmt.Errorf("failed to resolve plant: %w", err)
	}

	logger.Debug().Str("plant_id", plant.ID).Str("plant_name", plant.Name).Msg("Using plant")
	return sess, plant, nil
}
