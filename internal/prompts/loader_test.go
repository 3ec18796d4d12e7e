package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("coaching.json", "system")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "{{.DayMaster}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("coaching.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("coaching.json", "system")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "안녕하세요 {{.Name}}님, 일간은 {{.DayMaster}}입니다."
	data := map[string]string{
		"Name":      "지우",
		"DayMaster": "丙",
	}

	result := Format(template, data)
	assert.Equal(t, "안녕하세요 지우님, 일간은 丙입니다.", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("coaching.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"system", "chat-turn", "no-chart", "no-memories", "no-history", "metadata-input"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get("coaching.json", "system")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("coaching.json", "system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestRender_ChatTurnFillsEveryPlaceholder(t *testing.T) {
	ClearCache()

	text, err := Render("coaching.json", "chat-turn", map[string]string{
		"History":   "(첫 대화)",
		"Mood":      "negative",
		"Topics":    "career",
		"Recurring": "없음",
		"Narrative": "쉼이 필요한 시기",
		"Message":   "회사 그만두고 싶어요",
	})
	require.NoError(t, err)
	assert.Empty(t, Unfilled(text))
	assert.Contains(t, text, "사용자: 회사 그만두고 싶어요")
}

func TestUnfilled(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Unfilled("{{.B}} and {{.A}} and {{.B}}"))
	assert.Empty(t, Unfilled("plain"))
	assert.Empty(t, Unfilled("broken {{.Open"))
}
