package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVector(t *testing.T) {
	v, err := parseVector(" 2, 4,1,0,1.5 ")
	require.NoError(t, err)
	assert.Equal(t, gap.TraitVector{2, 4, 1, 0, 1.5}, v)

	v, err = parseVector("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseVector("2,four")
	assert.Error(t, err)
}

func TestParseAcquired(t *testing.T) {
	v, err := parseAcquired("entj")
	require.NoError(t, err)
	assert.Equal(t, gap.TraitVector{2, 2, 2, 2, 0}, v)

	v, err = parseAcquired("1,2,3,4,5")
	require.NoError(t, err)
	assert.Equal(t, gap.TraitVector{1, 2, 3, 4, 5}, v)

	_, err = parseAcquired("ABCD")
	var invalid *gap.InvalidTypeCodeError
	assert.ErrorAs(t, err, &invalid)
}

func TestRunGap(t *testing.T) {
	tests := []struct {
		name     string
		innate   string
		acquired string
		score    int
		level    int
		branch   string
		fallback string
	}{
		{name: "type code", innate: "2,4,1,0,1", acquired: "ENTJ", score: 61, level: 39, branch: "rest"},
		{name: "identical vectors", innate: "2,4,1,0,1", acquired: "2,4,1,0,1", score: 100, level: 0, branch: "growth"},
		{name: "missing acquired", innate: "2,4,1,0,1", acquired: "", score: 100, level: 0, branch: "growth", fallback: "missing_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runGap(&out, tt.innate, tt.acquired, false))

			var resp struct {
				MatchingScore int `json:"matching_score"`
				GapLevel      int `json:"gap_level"`
				Details       struct {
					Fallback string `json:"fallback"`
				} `json:"details"`
				Narrative struct {
					Branch string `json:"branch"`
				} `json:"narrative"`
			}
			require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
			assert.Equal(t, tt.score, resp.MatchingScore)
			assert.Equal(t, tt.level, resp.GapLevel)
			assert.Equal(t, tt.branch, resp.Narrative.Branch)
			assert.Equal(t, tt.fallback, resp.Details.Fallback)
		})
	}
}

func TestRunGap_Verbose(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runGap(&out, "2,4,1,0,1", "ENTJ", true))
	assert.Contains(t, out.String(), "TRAIT GAP")
	assert.Contains(t, out.String(), "Matching score: 61")
}

func TestRunGap_InvalidFlags(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, runGap(&out, "2,x", "ENTJ", false), "--innate")
	assert.ErrorContains(t, runGap(&out, "2,4,1,0,1", "QQQQ", false), "--acquired")
	assert.Empty(t, out.String())
}
