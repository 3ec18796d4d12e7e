package coaching

import (
	"github.com/jonathan/saju-coach/internal/insight"
	"github.com/jonathan/saju-coach/internal/types"
)

// Meta summarizes the session for the first event of a chat stream.
func (s *Session) Meta() types.ChatMeta {
	meta := types.ChatMeta{
		HasChart:  s.Chart != nil,
		Mood:      string(s.Report.Sentiment.Mood),
		Topics:    topicStrings(s.Report.Topics),
		Recurring: topicStrings(insight.Recurring(s.Report.Frequency)),
	}
	if s.Chart != nil {
		meta.DayMaster = s.Chart.DayMaster().String()
	}
	if s.Gap != nil {
		score, level := s.Gap.MatchingScore, s.Gap.GapLevel
		meta.MatchingScore = &score
		meta.GapLevel = &level
	}
	if s.Narrative != nil {
		meta.Narrative = string(s.Narrative.Branch)
	}
	return meta
}
