package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcom-dev/zmanim/pkg/engine"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	calcDate            string
	calcLatitude        float64
	calcLongitude       float64
	calcElevation       float64
	calcTimezone        string
	calcFormulas        []string
	calcEvents          []string
	calcIgnoreElevation bool
	calcExpr            string
	calcDays            int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Evaluate formulas for a date and location",
	Long: `Evaluate the loaded formula set for one day. Formulas are ordered by
their references, filtered against the given event codes, and printed with
their computed times. Formulas that cannot produce a time on the given day
are reported individually.`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVar(&calcDate, "date", "", "civil date to evaluate, YYYY-MM-DD (default today)")
	calcCmd.Flags().Float64Var(&calcLatitude, "lat", 0, "latitude in degrees, north positive")
	calcCmd.Flags().Float64Var(&calcLongitude, "lon", 0, "longitude in degrees, east positive")
	calcCmd.Flags().Float64Var(&calcElevation, "elevation", 0, "observer elevation in meters")
	calcCmd.Flags().StringVar(&calcTimezone, "tz", "UTC", "IANA timezone for results")
	calcCmd.Flags().StringSliceVar(&calcFormulas, "formula", nil, "restrict to specific formula keys")
	calcCmd.Flags().StringSliceVar(&calcEvents, "events", nil, "active calendar event codes for tag filtering")
	calcCmd.Flags().BoolVar(&calcIgnoreElevation, "ignore-elevation", false, "force sea-level horizons")
	calcCmd.Flags().StringVar(&calcExpr, "expr", "", "evaluate a single ad-hoc formula instead of the loaded set")
	calcCmd.Flags().IntVar(&calcDays, "days", 1, "number of consecutive days to evaluate")

	_ = calcCmd.MarkFlagRequired("lat")
	_ = calcCmd.MarkFlagRequired("lon")

	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, _ []string) error {
	config, err := LoadCLIConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	date := time.Now()
	if calcDate != "" {
		date, err = time.Parse("2006-01-02", calcDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", calcDate, err)
		}
	}

	if calcDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	if calcExpr != "" {
		return runCalcExpr(date)
	}

	svc, err := engine.NewService(logger, &config.Engine)
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		return err
	}
	defer func() { _ = svc.Stop() }()

	failed := false
	for day := 0; day < calcDays; day++ {
		result, err := svc.EvaluateDay(cmd.Context(), engine.DayRequest{
			Date:            date.AddDate(0, 0, day),
			Latitude:        calcLatitude,
			Longitude:       calcLongitude,
			Elevation:       calcElevation,
			Timezone:        calcTimezone,
			Keys:            calcFormulas,
			ActiveEvents:    calcEvents,
			IgnoreElevation: calcIgnoreElevation,
		})
		if err != nil {
			return err
		}

		if calcDays > 1 {
			fmt.Printf("%s\n", result.Date.Format("2006-01-02"))
		}
		printDayResult(result)
		if len(result.Errors) > 0 {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

// runCalcExpr evaluates one formula given on the command line, without a
// loaded set. References are unavailable in this mode.
func runCalcExpr(date time.Time) error {
	tz := time.UTC
	if calcTimezone != "" {
		loc, err := time.LoadLocation(calcTimezone)
		if err != nil {
			return fmt.Errorf("%w: %s", engine.ErrUnknownTimezone, calcTimezone)
		}
		tz = loc
	}

	for day := 0; day < calcDays; day++ {
		ctx := engine.NewContext(date.AddDate(0, 0, day), calcLatitude, calcLongitude, calcElevation, tz)
		ctx.Options.IgnoreElevation = calcIgnoreElevation

		v, err := engine.EvaluateFormula(calcExpr, ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", ctx.Date.Format("2006-01-02"), v)
	}
	return nil
}

func printDayResult(result *engine.DayResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "FORMULA\tTIME\n")
	for _, key := range result.Order {
		v := result.Values[key]
		fmt.Fprintf(w, "%s\t%s\n", key, v.Time.Format("15:04:05"))
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nFAILED\tREASON\n")
		keys := make([]string, 0, len(result.Errors))
		for key := range result.Errors {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(w, "%s\t%s\n", key, result.Errors[key])
		}
	}

	if len(result.Hidden) > 0 {
		fmt.Fprintf(w, "\nHidden by event filtering: %d\n", len(result.Hidden))
	}
}
