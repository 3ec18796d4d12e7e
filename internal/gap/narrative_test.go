package gap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeNarrative_Threshold(t *testing.T) {
	tests := []struct {
		gapLevel float64
		expected Branch
	}{
		{31, BranchRest},
		{30, BranchGrowth},
		{30.0001, BranchRest},
		{0, BranchGrowth},
		{100, BranchRest},
		{-15, BranchGrowth},
		{250, BranchRest},
		{math.Inf(1), BranchRest},
		{math.Inf(-1), BranchGrowth},
		{math.NaN(), BranchGrowth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DecodeNarrative(tt.gapLevel).Branch, "gap level %v", tt.gapLevel)
	}
}

func TestDecodeNarrative_StaticContent(t *testing.T) {
	for _, level := range []float64{0, 100} {
		n := DecodeNarrative(level)
		assert.NotEmpty(t, n.Title)
		assert.NotEmpty(t, n.Description)
		for i, step := range n.Plan {
			assert.NotEmpty(t, step, "plan step %d", i)
		}
	}
	assert.NotEqual(t, DecodeNarrative(0).Title, DecodeNarrative(100).Title)
	// Content is keyed only by the branch.
	assert.Equal(t, DecodeNarrative(45), DecodeNarrative(99))
}

func TestResult_Narrative(t *testing.T) {
	result := CalculateGap(NewTraitVector(2, 4, 1, 0, 1), NewTraitVector(2, 2, 2, 2, 0))
	assert.Equal(t, 39, result.GapLevel)
	assert.Equal(t, BranchRest, result.Narrative().Branch)

	perfect := CalculateGap(nil, nil)
	assert.Equal(t, BranchGrowth, perfect.Narrative().Branch)
}
