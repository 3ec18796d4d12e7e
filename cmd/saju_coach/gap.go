package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/observability"
	"github.com/jonathan/saju-coach/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	gapInnate   string
	gapAcquired string
)

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Score the gap between an innate and an acquired trait vector",
	Long: `Score the gap between an innate element vector and an acquired vector.
The acquired side is either a four-letter type code or a comma-separated vector.`,
	Example: `  saju_coach gap --innate 2,4,1,0,1 --acquired ENTJ
  saju_coach gap --innate 2,4,1,0,1 --acquired 1,2,3,4,5 -v`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGap(cmd.OutOrStdout(), gapInnate, gapAcquired, verbose)
	},
}

func init() {
	gapCmd.Flags().StringVar(&gapInnate, "innate", "", "Innate vector, comma-separated (wood,fire,earth,metal,water)")
	gapCmd.Flags().StringVar(&gapAcquired, "acquired", "", "Acquired type code (e.g. ENTJ) or comma-separated vector")
	_ = gapCmd.MarkFlagRequired("innate")
	rootCmd.AddCommand(gapCmd)
}

// parseVector reads a comma-separated list of numbers. An empty string is a nil vector.
func parseVector(s string) (gap.TraitVector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	v := make(gap.TraitVector, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		v = append(v, f)
	}
	return v, nil
}

// parseAcquired accepts a type code or a numeric vector.
func parseAcquired(s string) (gap.TraitVector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.ContainsAny(s, ",0123456789") {
		return parseVector(s)
	}
	return gap.FromTypeCode(s)
}

func runGap(out io.Writer, innateFlag, acquiredFlag string, verboseOutput bool) error {
	innate, err := parseVector(innateFlag)
	if err != nil {
		return fmt.Errorf("--innate: %w", err)
	}
	acquired, err := parseAcquired(acquiredFlag)
	if err != nil {
		return fmt.Errorf("--acquired: %w", err)
	}

	result := gap.CalculateGap(innate, acquired)
	if result.Details.Fallback != gap.FallbackNone {
		logger.Debug("gap scored with fallback", zap.String("reason", string(result.Details.Fallback)))
	}

	if verboseOutput {
		observability.NewPrinter(out).PrintGap(result)
		return nil
	}
	return writeJSON(out, types.NewGapResponse(result))
}
