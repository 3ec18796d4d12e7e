// Package observability provides Prometheus metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/saju"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintChart outputs the four pillars and the element balance.
func (p *Printer) PrintChart(chart *saju.Chart) {
	if chart == nil {
		return
	}

	var sb strings.Builder
	hour := "unknown"
	if chart.Hour != nil {
		hour = chart.Hour.String()
	}
	sb.WriteString(fmt.Sprintf("Year:   %s\n", chart.Year))
	sb.WriteString(fmt.Sprintf("Month:  %s\n", chart.Month))
	sb.WriteString(fmt.Sprintf("Day:    %s  (day master %s, %s)\n", chart.Day, chart.DayMaster(), chart.DayMaster().Element()))
	sb.WriteString(fmt.Sprintf("Hour:   %s\n", hour))
	sb.WriteString(fmt.Sprintf("Sun:    %.4f°\n", chart.SunLongitude))
	sb.WriteString("\nElements:\n")
	for i, n := range chart.Elements {
		e := saju.Element(i)
		sb.WriteString(fmt.Sprintf("  %-6s %s %s\n", e, e.Hanja(), strings.Repeat("■", n)))
	}

	p.printBox("SAJU CHART", sb.String())
}

// PrintNeuralProfile outputs the four gates and the longitudes they came from.
func (p *Printer) PrintNeuralProfile(profile *celestial.NeuralProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Life work:  gate %-2d  (%.4f°)\n", profile.LifeWork, profile.Longitudes.PersonalitySun))
	sb.WriteString(fmt.Sprintf("Evolution:  gate %-2d  (%.4f°)\n", profile.Evolution, profile.Longitudes.PersonalityEarth))
	sb.WriteString(fmt.Sprintf("Radiance:   gate %-2d  (%.4f°)\n", profile.Radiance, profile.Longitudes.DesignSun))
	sb.WriteString(fmt.Sprintf("Purpose:    gate %-2d  (%.4f°)\n", profile.Purpose, profile.Longitudes.DesignEarth))

	p.printBox("NEURAL PROFILE", sb.String())
}

// PrintGap outputs a gap result and the narrative it selects.
func (p *Printer) PrintGap(result gap.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Matching score: %d\n", result.MatchingScore))
	sb.WriteString(fmt.Sprintf("Gap level:      %d\n", result.GapLevel))
	sb.WriteString(fmt.Sprintf("Distance:       %.2f over %d dimensions\n", result.Details.Distance, result.Details.DimensionCount))
	if result.Details.Fallback != gap.FallbackNone {
		sb.WriteString(fmt.Sprintf("Fallback:       %s\n", result.Details.Fallback))
	}

	n := result.Narrative()
	sb.WriteString(fmt.Sprintf("\nNarrative: %s (%s)\n", n.Title, n.Branch))
	for i, step := range n.Plan {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
	}

	p.printBox("TRAIT GAP", sb.String())
}
