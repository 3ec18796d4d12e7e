package coaching

import (
	"fmt"
	"strings"

	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/insight"
	"github.com/jonathan/saju-coach/internal/prompts"
	"github.com/jonathan/saju-coach/internal/saju"
)

const promptFile = "coaching.json"

// buildPrompts renders the system instruction and the user-turn prompt.
func buildPrompts(s *Session) (system, prompt string, err error) {
	if s.Chart != nil {
		system, err = prompts.Render(promptFile, "system", map[string]string{
			"DayMaster": formatDayMaster(s.Chart.DayMaster()),
			"Pillars":   formatPillars(s.Chart),
			"Elements":  formatElements(s.Chart.Elements),
			"Gates":     formatGates(s),
			"Persona":   formatPersona(s.Report.Persona),
			"Gap":       formatGap(s.Gap),
			"Memories":  formatMemories(s.Memories),
		})
	} else {
		system, err = prompts.Get(promptFile, "no-chart")
	}
	if err != nil {
		return "", "", err
	}

	prompt, err = prompts.Render(promptFile, "chat-turn", map[string]string{
		"History":   formatHistory(s.History),
		"Mood":      string(s.Report.Sentiment.Mood),
		"Topics":    joinTopics(s.Report.Topics),
		"Recurring": joinTopics(insight.Recurring(s.Report.Frequency)),
		"Narrative": formatNarrative(s.Narrative),
		"Message":   s.Message,
	})
	if err != nil {
		return "", "", err
	}
	return system, prompt, nil
}

func formatDayMaster(stem saju.Stem) string {
	polarity := "음"
	if stem.Yang() {
		polarity = "양"
	}
	return fmt.Sprintf("%s (%s %s, %s)", stem, stem.Element().Hanja(), stem.Element(), polarity)
}

func formatPillars(chart *saju.Chart) string {
	var parts []string
	for _, p := range chart.Pillars() {
		parts = append(parts, p.String())
	}
	if chart.Hour == nil {
		parts = append(parts, "(시주 미상)")
	}
	return strings.Join(parts, " ")
}

func formatElements(counts saju.ElementCounts) string {
	parts := make([]string, 0, saju.ElementCount)
	for i, n := range counts {
		e := saju.Element(i)
		parts = append(parts, fmt.Sprintf("%s(%s) %d", e.Hanja(), e, n))
	}
	return strings.Join(parts, ", ")
}

func formatGates(s *Session) string {
	if s.Profile == nil {
		return "(없음)"
	}
	p := s.Profile
	return fmt.Sprintf("life work %d / evolution %d / radiance %d / purpose %d",
		p.LifeWork, p.Evolution, p.Radiance, p.Purpose)
}

func formatPersona(p insight.Persona) string {
	var sb strings.Builder
	sb.WriteString(p.Archetype)
	if len(p.Traits) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(p.Traits, ", "))
	}
	sb.WriteString(fmt.Sprintf("\n강한 기운 %s, 약한 기운 %s", p.Dominant.Hanja(), p.Weakest.Hanja()))
	if p.TypeCode != "" {
		sb.WriteString("\n성격 유형 " + p.TypeCode)
	}
	return sb.String()
}

func formatGap(r *gap.Result) string {
	if r == nil || r.Details.Fallback == gap.FallbackMissing {
		return "성격 유형 정보가 없어 간극을 계산하지 않았습니다."
	}
	return fmt.Sprintf("일치도 %d / 간극 %d (거리 %.2f)", r.MatchingScore, r.GapLevel, r.Details.Distance)
}

func formatNarrative(n *gap.Narrative) string {
	if n == nil {
		return "명식 정보 없이, 사용자의 이야기를 듣고 정리하는 데 집중하세요."
	}
	var sb strings.Builder
	sb.WriteString(n.Title)
	sb.WriteString(": ")
	sb.WriteString(n.Description)
	for i, step := range n.Plan {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, step))
	}
	return sb.String()
}

func formatMemories(memories []db.Memory) string {
	if len(memories) == 0 {
		return prompts.MustGet(promptFile, "no-memories")
	}
	lines := make([]string, len(memories))
	for i, m := range memories {
		lines[i] = "- " + m.Content
	}
	return strings.Join(lines, "\n")
}

func formatHistory(history []db.ChatMessage) string {
	if len(history) == 0 {
		return prompts.MustGet(promptFile, "no-history")
	}
	lines := make([]string, len(history))
	for i, m := range history {
		speaker := "사용자"
		if m.Role == db.RoleAssistant {
			speaker = "코치"
		}
		lines[i] = speaker + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

func joinTopics(topics []insight.Topic) string {
	if len(topics) == 0 {
		return "없음"
	}
	parts := make([]string, len(topics))
	for i, t := range topics {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
