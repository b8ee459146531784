package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/mixwatch/growatt"
)

var (
	deviceSerial string
	timespanFlag string
	dateFlag     string
)

// plantsCmd represents the plants command
var plantsCmd = &cobra.Command{
	Use:   "plants",
	Short: "List the plants of the account",
	RunE:  runPlants,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"test"},
	Short:   "Test the Growatt credentials",
	Long:    `Log in to the Growatt server and display the account the session belongs to.`,
	RunE:    runLogin,
}

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [endpoint]",
	Short: "Dump the raw JSON of one API endpoint",
	Long: `Call one endpoint of the Growatt mobile API and print its response as JSON.
Without an endpoint the available endpoints are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(plantsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&deviceSerial, "serial", "", "inverter or storage serial number")
	fetchCmd.Flags().StringVar(&timespanFlag, "timespan", "", "hour, day or month (default from config)")
	fetchCmd.Flags().StringVar(&dateFlag, "date", "", "date as YYYY-MM-DD or YYYY-MM (default today)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	fmt.Printf("Logging in to %s as %s...\n", cfg.Growatt.ServerURL, cfg.Growatt.Username)

	sess, err := login(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("- User ID: %s\n", sess.UserID)
	if sess.UserLevel != "" {
		fmt.Printf("- User level: %s\n", sess.UserLevel)
	}
	fmt.Printf("- User agent: %s\n", growattClient.UserAgent())

	return nil
}

func runPlants(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := login(ctx)
	if err != nil {
		return err
	}

	plants, err := growattClient.ListPlants(ctx, sess)
	if err != nil {
		return err
	}

	printPlants(cmd.OutOrStdout(), plants)
	return nil
}

func printPlants(w io.Writer, plants []growatt.Plant) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTODAY\tTOTAL")
	for _, plant := range plants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			plant.ID,
			plant.Name,
			plant.Record.Get("todayEnergy").Str(),
			plant.Record.Get("totalEnergy").Str(),
		)
	}
	tw.Flush()
}

func runFetch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		printEndpoints(out)
		return nil
	}

	ep, ok := growatt.LookupEndpoint(args[0])
	if !ok {
		return fmt.Errorf("unknown endpoint %q (available: %s)", args[0], strings.Join(growatt.EndpointNames(), ", "))
	}

	if needsMixSerial(ep) {
		if err := cfg.RequireMixSerial(); err != nil {
			return err
		}
	}

	params, err := requestParams(cmd)
	if err != nil {
		return err
	}
	params.DeviceSN = deviceSerial

	ctx := cmd.Context()
	sess, plant, err := loginAndResolve(ctx)
	if err != nil {
		return err
	}
	params.PlantID = plant.ID

	doc, err := growattClient.InvokeEndpoint(ctx, sess, ep, params)
	if err != nil {
		return err
	}

	return printJSON(out, doc)
}

func printEndpoints(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDPOINT\tMETHOD\tPATH")
	for _, name := range growatt.EndpointNames() {
		ep, _ := growatt.LookupEndpoint(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, ep.Method, ep.Path)
	}
	tw.Flush()
}

// requestParams builds the mix serial, timespan and date shared by fetch and chart
func requestParams(cmd *cobra.Command) (growatt.Params, error) {
	span := cfg.Chart.Timespan
	if cmd.Flags().Changed("timespan") {
		span = timespanFlag
	}
	timespan, err := growatt.ParseTimespan(span)
	if err != nil {
		return growatt.Params{}, err
	}

	date, err := parseDate(dateFlag, time.Now())
	if err != nil {
		return growatt.Params{}, err
	}

	return growatt.Params{
		MixSN:    cfg.Growatt.MixSerial,
		Timespan: timespan,
		Date:     date,
	}, nil
}

// parseDate accepts YYYY-MM-DD or YYYY-MM and defaults to now
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if date, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or YYYY-MM)", s)
}

func printJSON(w io.Writer, doc growatt.Value) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
