package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/coaching"
	"github.com/jonathan/saju-coach/internal/config"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/observability"
	"github.com/jonathan/saju-coach/internal/saju"
	"github.com/jonathan/saju-coach/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const birthLayout = "2006-01-02T15:04:05"

var (
	chartBirth       string
	chartTimezone    string
	chartUnknownHour bool
	chartTypeCode    string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Compute a Four Pillars chart and neural profile",
	Long: `Compute the Four Pillars chart and the neural profile for a local birth moment.
Prints JSON, or formatted boxes with --verbose.`,
	Example: `  saju_coach chart --birth 1990-01-01T12:00:00 --tz Asia/Seoul
  saju_coach chart --birth 1990-01-01T00:00:00 --tz UTC --unknown-hour --type ENTJ -v`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChart(cmd.OutOrStdout(), celestial.MeeusEphemeris{}, chartOptions{
			Birth:       chartBirth,
			Timezone:    chartTimezone,
			UnknownHour: chartUnknownHour,
			TypeCode:    chartTypeCode,
			Verbose:     verbose,
		})
	},
}

func init() {
	chartCmd.Flags().StringVar(&chartBirth, "birth", "", "Local birth moment (YYYY-MM-DDTHH:MM:SS)")
	chartCmd.Flags().StringVar(&chartTimezone, "tz", config.DefaultBirthTimezone, "IANA timezone of the birth place")
	chartCmd.Flags().BoolVar(&chartUnknownHour, "unknown-hour", false, "Birth hour is unknown; omit the hour pillar")
	chartCmd.Flags().StringVar(&chartTypeCode, "type", "", "Optional four-letter type code to score the gap against")
	_ = chartCmd.MarkFlagRequired("birth")
	rootCmd.AddCommand(chartCmd)
}

type chartOptions struct {
	Birth       string
	Timezone    string
	UnknownHour bool
	TypeCode    string
	Verbose     bool
}

// parseBirth reads a wall-clock birth moment in the given zone. An unknown
// hour keeps the civil date and moves the reading to local noon.
func parseBirth(value, timezone string, unknownHour bool) (saju.BirthMoment, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return saju.BirthMoment{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	t, err := time.ParseInLocation(birthLayout, value, loc)
	if err != nil {
		return saju.BirthMoment{}, fmt.Errorf("invalid --birth %q: expected %s", value, birthLayout)
	}
	if unknownHour {
		m := saju.NewBirthMoment(t.Year(), t.Month(), t.Day(), 12, 0, loc)
		m.HourKnown = false
		return m, nil
	}
	return saju.NewBirthMoment(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), loc), nil
}

func runChart(out io.Writer, eph celestial.Ephemeris, opts chartOptions) error {
	birth, err := parseBirth(opts.Birth, opts.Timezone, opts.UnknownHour)
	if err != nil {
		return err
	}

	var result *gap.Result
	if opts.TypeCode != "" {
		if _, err := gap.NormalizeTypeCode(opts.TypeCode); err != nil {
			return err
		}
	}

	chart, profile, err := coaching.ComputeChart(eph, birth)
	if err != nil {
		return fmt.Errorf("chart computation failed: %w", err)
	}
	logger.Debug("chart computed",
		zap.Time("birth", birth.Time),
		zap.Bool("hour_known", birth.HourKnown),
		zap.Float64("sun_longitude", chart.SunLongitude))

	if opts.TypeCode != "" {
		r := coaching.ScoreGap(chart, opts.TypeCode)
		result = &r
	}

	if opts.Verbose {
		p := observability.NewPrinter(out)
		p.PrintChart(chart)
		p.PrintNeuralProfile(profile)
		if result != nil {
			p.PrintGap(*result)
		}
		return nil
	}
	return writeJSON(out, types.NewChartResponse(chart, profile, result))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
