// Package gap scores the distance between an innate and an acquired trait vector
// and picks the coaching narrative that matches the result.
package gap

import "math"

const (
	// Dimensions is the trait-space dimensionality: one axis per element
	// (wood, fire, earth, metal, water).
	Dimensions = 5

	// Sensitivity controls how fast the matching score decays with distance:
	// a distance equal to Sensitivity halves the score. Changing it shifts every
	// user's score, so update the pinned expectations in gap_test.go with it.
	Sensitivity = 5.0
)

// TraitVector is a position in trait space. Vectors built by this package have
// Dimensions components; shorter or longer vectors are tolerated by CalculateGap.
type TraitVector []float64

// NewTraitVector builds a vector from the five element components.
func NewTraitVector(wood, fire, earth, metal, water float64) TraitVector {
	return TraitVector{wood, fire, earth, metal, water}
}

// FallbackReason explains why a Result is the neutral default.
type FallbackReason string

// Fallback reasons. Both produce the same perfect-match Result.
const (
	FallbackNone      FallbackReason = ""
	FallbackMissing   FallbackReason = "missing_input"
	FallbackNonFinite FallbackReason = "non_finite"
)

// Details carries the raw numbers behind a Result.
type Details struct {
	Distance       float64        `json:"distance"`
	DimensionCount int            `json:"dimension_count"`
	Fallback       FallbackReason `json:"fallback,omitempty"`
}

// Result is the outcome of comparing two trait vectors.
// MatchingScore + GapLevel is always 100.
type Result struct {
	MatchingScore int     `json:"matching_score"`
	GapLevel      int     `json:"gap_level"`
	Details       Details `json:"details"`
}

func fallback(reason FallbackReason) Result {
	return Result{
		MatchingScore: 100,
		GapLevel:      0,
		Details:       Details{Fallback: reason},
	}
}

// CalculateGap compares innate with acquired over their common prefix.
//
// Missing data is treated as a perfect match rather than an error so that a
// narrative can always be chosen; non-finite arithmetic falls back the same way.
// Details.Fallback records which of the two happened.
func CalculateGap(innate, acquired TraitVector) Result {
	n := min(len(innate), len(acquired))
	if n == 0 {
		return fallback(FallbackMissing)
	}

	var sum float64
	for i := 0; i < n; i++ {
		d := innate[i] - acquired[i]
		sum += d * d
	}
	distance := math.Sqrt(sum)
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return fallback(FallbackNonFinite)
	}

	score := int(math.Round(clamp(100/(1+distance/Sensitivity), 0, 100)))
	return Result{
		MatchingScore: score,
		GapLevel:      100 - score,
		Details: Details{
			Distance:       math.Round(distance*100) / 100,
			DimensionCount: n,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
