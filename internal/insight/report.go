package insight

import "github.com/jonathan/saju-coach/internal/saju"

// Report bundles every heuristic for one chat turn.
type Report struct {
	Sentiment Sentiment        `json:"sentiment"`
	Topics    []Topic          `json:"topics"`
	Frequency []TopicFrequency `json:"frequency"`
	Persona   Persona          `json:"persona"`
}

// Analyze runs all heuristics. history holds earlier user messages, oldest first;
// the current message is included in the frequency count.
func Analyze(message string, history []string, chart *saju.Chart, typeCode string) Report {
	all := make([]string, 0, len(history)+1)
	all = append(all, history...)
	all = append(all, message)

	return Report{
		Sentiment: AnalyzeSentiment(message),
		Topics:    DetectTopics(message),
		Frequency: DetectFrequency(all),
		Persona:   InferPersonality(chart, typeCode),
	}
}
