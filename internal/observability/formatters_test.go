package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/saju"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regressionChart(t *testing.T) *saju.Chart {
	t.Helper()
	birth := saju.NewBirthMoment(1990, time.January, 1, 12, 0, time.UTC)
	return saju.ComputeWithLongitude(birth, 280.8155)
}

func TestPrintChart(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintChart(regressionChart(t))
	output := buf.String()

	assert.Contains(t, output, "SAJU CHART")
	assert.Contains(t, output, "己巳")
	assert.Contains(t, output, "丙子")
	assert.Contains(t, output, "丙寅")
	assert.Contains(t, output, "甲午")
	assert.Contains(t, output, "fire   火 ■■■■")
}

func TestPrintChart_UnknownHour(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	chart := regressionChart(t)
	chart.Hour = nil
	p.PrintChart(chart)

	assert.Contains(t, buf.String(), "Hour:   unknown")
}

func TestPrintChart_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintChart(nil)
	p.PrintNeuralProfile(nil)

	assert.Empty(t, buf.String())
}

func TestPrintNeuralProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := celestial.ProfileFromLongitude(280.8155)
	p.PrintNeuralProfile(&profile)
	output := buf.String()

	assert.Contains(t, output, "NEURAL PROFILE")
	assert.Contains(t, output, "gate 38")
	assert.Contains(t, output, "gate 39")
	assert.Contains(t, output, "gate 48")
	assert.Contains(t, output, "gate 21")
	assert.Contains(t, output, "(280.8155°)")
	assert.Contains(t, output, "(100.8155°)")
	assert.Contains(t, output, "(192.8155°)")
	assert.Contains(t, output, "(12.8155°)")
}

func TestPrintGap(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGap(gap.CalculateGap(gap.NewTraitVector(2, 4, 1, 0, 1), gap.NewTraitVector(2, 2, 2, 2, 0)))
	output := buf.String()

	assert.Contains(t, output, "Matching score: 61")
	assert.Contains(t, output, "Gap level:      39")
	assert.Contains(t, output, "(rest)")
	assert.NotContains(t, output, "Fallback")
}

func TestPrintGap_Fallback(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGap(gap.CalculateGap(nil, gap.NewTraitVector(1, 1, 1, 1, 1)))

	assert.Contains(t, buf.String(), "Fallback:       missing_input")
	assert.Contains(t, buf.String(), "(growth)")
}

func TestPrintBox_TruncatesByRune(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("가", boxWidth))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(lines[3], " │"), "..."))
	assert.Equal(t, boxWidth, len([]rune(lines[3])))
}
