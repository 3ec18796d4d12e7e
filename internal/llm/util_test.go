package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	const meta = `{"mood": "anxious", "topics": ["career"]}`

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: meta, want: meta},
		{name: "json fence", input: "```json\n" + meta + "\n```", want: meta},
		{name: "bare fence", input: "```\n" + meta + "\n```", want: meta},
		{name: "fence with other language tag", input: "```js\n" + meta + "\n```", want: meta},
		{name: "preamble", input: "Here is the metadata for this turn:\n\n" + meta, want: meta},
		{name: "trailing chatter", input: meta + "\n\nHope this helps.", want: meta},
		{name: "array", input: "Topics:\n[\"career\", \"family\"]", want: `["career", "family"]`},
		{
			name:  "braces and quotes inside strings",
			input: `Result: {"memory": "said \"{not json}\" twice"} done`,
			want:  `{"memory": "said \"{not json}\" twice"}`,
		},
		{
			name:  "truncated object is left for repair",
			input: `Sure: {"mood": "calm", "topics": [`,
			want:  `{"mood": "calm", "topics": [`,
		},
		{name: "no json at all", input: "  I could not extract anything.  ", want: "I could not extract anything."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": {"b": [1, 2]}}`, extractJSONObject(`{"a": {"b": [1, 2]}} tail`))
	assert.Equal(t, `[{"id": 1}, [2]]`, extractJSONArray(`[{"id": 1}, [2]], more`))
	assert.Empty(t, extractJSONObject(""))
	assert.Empty(t, extractJSONObject(`["starts", "with", "array"]`))
	assert.Empty(t, extractJSONArray(`{"k": 1}`))
	assert.Empty(t, extractJSONObject(`{"never": "closed"`))
}

func TestDecodeJSON(t *testing.T) {
	type metadata struct {
		Mood   string   `json:"mood"`
		Topics []string `json:"topics"`
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "clean", input: `{"mood": "calm", "topics": ["career"]}`},
		{name: "fenced", input: "```json\n{\"mood\": \"calm\", \"topics\": [\"career\"]}\n```"},
		{name: "trailing comma", input: `{"mood": "calm", "topics": ["career",],}`},
		{name: "single quotes", input: `{'mood': 'calm', 'topics': ['career']}`},
		{name: "truncated", input: `{"mood": "calm", "topics": ["career"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got metadata
			require.NoError(t, DecodeJSON(tt.input, &got))
			assert.Equal(t, "calm", got.Mood)
			assert.Equal(t, []string{"career"}, got.Topics)
		})
	}
}

func TestRepairJSON_ProducesValidJSON(t *testing.T) {
	repaired, err := RepairJSON(`{"memory": "새 직장을 구하는 중",}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"memory": "새 직장을 구하는 중"}`, repaired)
}
