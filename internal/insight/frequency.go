package insight

import (
	"sort"
	"strings"
)

// Topic is a life area the user may keep returning to.
type Topic string

// Known topics.
const (
	TopicCareer Topic = "career"
	TopicLove   Topic = "love"
	TopicMoney  Topic = "money"
	TopicHealth Topic = "health"
	TopicFamily Topic = "family"
	TopicSelf   Topic = "self"
)

// RecurringThreshold is how many messages must mention a topic before it is recurring.
const RecurringThreshold = 2

var topicKeywords = map[Topic][]string{
	TopicCareer: {"직장", "회사", "이직", "취업", "커리어", "상사", "업무", "승진", "career", "job", "boss", "work", "working", "coworker"},
	TopicLove:   {"연애", "남자친구", "여자친구", "애인", "결혼", "이별", "썸 타", "썸남", "썸녀", "짝사랑", "love", "dating", "breakup", "relationship"},
	TopicMoney:  {"돈이", "돈을", "돈은", "돈도", "돈 때문", "재물", "투자", "월급", "빚", "대출", "주식", "money", "salary", "debt", "invest", "investing", "investment"},
	TopicHealth: {"건강", "병원", "아프", "잠이", "잠을", "불면", "수면", "다이어트", "health", "sleep", "sleeping", "insomnia", "sick"},
	TopicFamily: {"가족", "부모", "엄마", "아빠", "형제", "자녀", "family", "parents", "mother", "father"},
	TopicSelf:   {"자존감", "나다운", "진짜 나", "성격", "정체성", "self", "identity", "confidence"},
}

// TopicFrequency is how many messages mentioned a topic.
type TopicFrequency struct {
	Topic     Topic `json:"topic"`
	Count     int   `json:"count"`
	Recurring bool  `json:"recurring"`
}

// DetectTopics returns the topics mentioned in one message, sorted by name.
func DetectTopics(text string) []Topic {
	lower := strings.ToLower(text)
	var topics []Topic
	for topic, keywords := range topicKeywords {
		if containsAnyCue(lower, keywords) {
			topics = append(topics, topic)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// DetectFrequency counts, per topic, the messages that mention it. A message
// mentioning a keyword several times still counts once. Results are sorted by
// count descending, then topic name.
func DetectFrequency(messages []string) []TopicFrequency {
	counts := make(map[Topic]int)
	for _, msg := range messages {
		for _, topic := range DetectTopics(msg) {
			counts[topic]++
		}
	}

	freqs := make([]TopicFrequency, 0, len(counts))
	for topic, count := range counts {
		freqs = append(freqs, TopicFrequency{
			Topic:     topic,
			Count:     count,
			Recurring: count >= RecurringThreshold,
		})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Topic < freqs[j].Topic
	})
	return freqs
}

// Recurring filters freqs down to recurring topics.
func Recurring(freqs []TopicFrequency) []Topic {
	var topics []Topic
	for _, f := range freqs {
		if f.Recurring {
			topics = append(topics, f.Topic)
		}
	}
	return topics
}
