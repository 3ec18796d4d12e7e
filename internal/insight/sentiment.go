// Package insight provides the lightweight conversation heuristics that feed the coaching prompt.
package insight

import (
	"math"
	"strings"
)

// Mood is a coarse sentiment label.
type Mood string

// Mood labels.
const (
	MoodPositive Mood = "positive"
	MoodNegative Mood = "negative"
	MoodNeutral  Mood = "neutral"
)

// moodThreshold is the score magnitude needed before a message counts as non-neutral.
const moodThreshold = 0.2

// Sentiment is the heuristic reading of one message.
type Sentiment struct {
	Mood     Mood     `json:"mood"`
	Score    float64  `json:"score"`
	Positive []string `json:"positive_cues,omitempty"`
	Negative []string `json:"negative_cues,omitempty"`
}

var positiveCues = []string{
	"좋", "행복", "기쁘", "기뻐", "설레", "감사", "뿌듯", "신나", "괜찮아졌", "희망", "편안",
	"happy", "glad", "excited", "grateful", "hope", "great", "love it",
}

var negativeCues = []string{
	"힘들", "우울", "불안", "걱정", "지쳤", "지치", "외롭", "슬프", "짜증", "화나", "무기력", "막막", "두렵", "스트레스",
	"sad", "tired", "anxious", "worried", "lonely", "stressed", "depressed", "angry", "exhausted",
}

// Negators that precede the cue as a separate word ("안 좋아", "not happy").
var preNegators = map[string]bool{
	"안": true, "못": true, "not": true, "never": true, "no": true, "hardly": true,
}

// Endings that negate the word the cue starts ("좋지 않아", "행복하지 못해").
var postNegators = []string{"지 않", "지않", "지 못", "지못"}

// AnalyzeSentiment scores text by counting positive and negative cue words.
// A negated positive cue counts as negative; a negated negative cue is dropped,
// since "not tired" says little about how the user feels.
// The score is (pos - neg) / (pos + neg).
func AnalyzeSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	s := Sentiment{Mood: MoodNeutral}

	for _, cue := range positiveCues {
		plain, negated := classifyCue(lower, cue)
		if plain {
			s.Positive = append(s.Positive, cue)
		}
		if negated {
			s.Negative = append(s.Negative, "not "+cue)
		}
	}
	for _, cue := range negativeCues {
		if plain, _ := classifyCue(lower, cue); plain {
			s.Negative = append(s.Negative, cue)
		}
	}

	total := len(s.Positive) + len(s.Negative)
	if total == 0 {
		return s
	}

	score := float64(len(s.Positive)-len(s.Negative)) / float64(total)
	s.Score = math.Round(score*100) / 100

	switch {
	case s.Score >= moodThreshold:
		s.Mood = MoodPositive
	case s.Score <= -moodThreshold:
		s.Mood = MoodNegative
	}
	return s
}

// classifyCue reports whether cue occurs in text without and with a negation.
func classifyCue(text, cue string) (plain, negated bool) {
	for _, i := range cueIndexes(text, cue) {
		if isNegated(text, i, i+len(cue)) {
			negated = true
		} else {
			plain = true
		}
	}
	return plain, negated
}

// isNegated looks one or two words back for a negator, and at the rest of the
// cue's own word for a Korean negative ending.
func isNegated(text string, start, end int) bool {
	before := strings.Fields(text[:start])
	for k := 1; k <= 2 && k <= len(before); k++ {
		w := strings.Trim(before[len(before)-k], ",.!?")
		if preNegators[w] || strings.HasSuffix(w, "n't") {
			return true
		}
	}

	rest := text[end:]
	// Skip the remainder of the stem's word, e.g. "하" in "행복하지 않아".
	for _, ending := range postNegators {
		if j := strings.Index(rest, ending); j >= 0 && !strings.ContainsAny(rest[:j], " \t\n") {
			return true
		}
	}
	return false
}
