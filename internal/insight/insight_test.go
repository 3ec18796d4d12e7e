package insight

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/saju-coach/internal/saju"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		mood  Mood
		score float64
	}{
		{"negative korean", "요즘 너무 힘들고 불안해요", MoodNegative, -1},
		{"positive korean", "오늘 정말 행복하고 감사해요", MoodPositive, 1},
		{"neutral", "그냥 그래요", MoodNeutral, 0},
		{"mixed", "기쁘지만 걱정도 돼요", MoodNeutral, 0},
		{"negated negative is dropped", "힘들지 않아요", MoodNeutral, 0},
		{"english", "I'm so tired and anxious", MoodNegative, -1},
		{"english negated negative", "I'm not tired, just worried", MoodNegative, -1},
		{"short negation before positive", "요즘 기분이 안 좋아요", MoodNegative, -1},
		{"long negation after positive", "회사 일이 잘 안 풀려서 좋지 않아요", MoodNegative, -1},
		{"negated positive with stem ending", "별로 행복하지 못해요", MoodNegative, -1},
		{"english negated positive", "I am not happy at all", MoodNegative, -1},
		{"contraction negates positive", "I don't love it here", MoodNegative, -1},
		{"positive kept beside unrelated negation", "잘 안 됐지만 그래도 감사해요", MoodPositive, 1},
		{"hopeless is not hope", "everything feels hopeless", MoodNeutral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AnalyzeSentiment(tt.text)
			assert.Equal(t, tt.mood, s.Mood)
			assert.InDelta(t, tt.score, s.Score, 1e-9)
			assert.GreaterOrEqual(t, s.Score, -1.0)
			assert.LessOrEqual(t, s.Score, 1.0)
		})
	}
}

func TestAnalyzeSentiment_NegatedCues(t *testing.T) {
	s := AnalyzeSentiment("요즘 기분이 안 좋아요")
	assert.Empty(t, s.Positive)
	assert.Equal(t, []string{"not 좋"}, s.Negative)
}

func TestDetectTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Topic
	}{
		{"korean particles", "돈 때문에 가족이랑 싸웠어요", []Topic{TopicFamily, TopicMoney}},
		{"nothing", "그냥 그래요", nil},
		{"english whole word", "My boss keeps moving my work deadlines", []Topic{TopicCareer}},
		{"english plural", "My parents called", []Topic{TopicFamily}},
		{"substring of another word", "I set up a home network and a new framework", nil},
		{"short korean syllable inside a word", "돈가스 먹고 잠깐 쉬었어요", nil},
		{"sleep trouble", "요즘 잠이 안 와요", []Topic{TopicHealth}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTopics(tt.text))
		})
	}
}

func TestDetectFrequency(t *testing.T) {
	messages := []string{
		"회사 상사 때문에 힘들어요",
		"이직을 고민 중이에요",
		"남자친구랑 싸웠어요",
		"회사 그만두고 싶어요",
	}

	want := []TopicFrequency{
		{Topic: TopicCareer, Count: 3, Recurring: true},
		{Topic: TopicLove, Count: 1, Recurring: false},
	}
	got := DetectFrequency(messages)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectFrequency mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Topic{TopicCareer}, Recurring(got))
}

func TestDetectFrequency_Empty(t *testing.T) {
	assert.Empty(t, DetectFrequency(nil))
	assert.Nil(t, Recurring(nil))
}

func TestInferPersonality(t *testing.T) {
	chart := saju.ComputeWithLongitude(saju.NewBirthMoment(1990, time.January, 1, 12, 0, time.UTC), 280.8)

	p := InferPersonality(chart, "entj")
	assert.Equal(t, saju.Fire, p.Dominant)
	assert.Equal(t, saju.Metal, p.Weakest)
	assert.Equal(t, "타오르는 불꽃형", p.Archetype)
	assert.NotEmpty(t, p.Traits)
	assert.Equal(t, "ENTJ", p.TypeCode)

	p = InferPersonality(chart, "nope")
	assert.Empty(t, p.TypeCode)
}

func TestInferPersonality_NilChart(t *testing.T) {
	p := InferPersonality(nil, "")
	assert.NotEmpty(t, p.Archetype)
}

func TestAnalyze_CountsCurrentMessage(t *testing.T) {
	report := Analyze("회사 일이 너무 힘들어요", []string{"상사가 또 화를 냈어요"}, nil, "")

	assert.Equal(t, MoodNegative, report.Sentiment.Mood)
	assert.Equal(t, []Topic{TopicCareer}, report.Topics)
	assert.Equal(t, []Topic{TopicCareer}, Recurring(report.Frequency))
}
