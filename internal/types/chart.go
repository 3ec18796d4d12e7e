package types

import (
	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/saju"
)

// ChartResponse is a computed chart with everything derived from it.
// Gap and Narrative are present only when an acquired vector was available.
type ChartResponse struct {
	Chart         *saju.Chart              `json:"chart"`
	DayMaster     string                   `json:"day_master"`
	Elements      map[string]int           `json:"elements"`
	NeuralProfile *celestial.NeuralProfile `json:"neural_profile"`
	Gap           *gap.Result              `json:"gap,omitempty"`
	Narrative     *gap.Narrative           `json:"narrative,omitempty"`
}

// NewChartResponse assembles a ChartResponse; result may be nil.
func NewChartResponse(chart *saju.Chart, profile *celestial.NeuralProfile, result *gap.Result) *ChartResponse {
	resp := &ChartResponse{
		Chart:         chart,
		NeuralProfile: profile,
	}
	if chart != nil {
		resp.DayMaster = chart.DayMaster().String()
		resp.Elements = chart.Elements.Map()
	}
	if result != nil {
		n := result.Narrative()
		resp.Gap = result
		resp.Narrative = &n
	}
	return resp
}
