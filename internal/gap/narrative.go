package gap

// Branch identifies one of the two coaching narratives.
type Branch string

// Narrative branches.
const (
	BranchRest   Branch = "rest"
	BranchGrowth Branch = "growth"
)

// RestThreshold is the gap level above which the rest narrative is chosen.
const RestThreshold = 30

// Narrative is the fixed guidance attached to a branch.
type Narrative struct {
	Branch      Branch    `json:"branch"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Plan        [3]string `json:"plan"`
}

var restNarrative = Narrative{
	Branch:      BranchRest,
	Title:       "쉼과 정비의 시기",
	Description: "타고난 기질과 지금 살아가는 방식 사이의 간극이 큽니다. 더 달리기보다 멈춰 서서 스스로를 돌보고, 원래의 리듬을 되찾는 것이 먼저입니다.",
	Plan: [3]string{
		"이번 주에는 일정 하나를 비워 아무것도 하지 않는 시간을 확보하세요.",
		"나를 지치게 하는 역할이나 기대를 하나 적어 보고, 내려놓을 수 있는지 살펴보세요.",
		"잘 해내지 못한 날에도 '그래도 괜찮다'고 스스로에게 말해 주세요.",
	},
}

var growthNarrative = Narrative{
	Branch:      BranchGrowth,
	Title:       "성장과 확장의 시기",
	Description: "타고난 기질과 지금의 모습이 잘 맞물려 있습니다. 지금의 흐름을 믿고 추진력을 더해, 가진 강점을 바깥으로 펼칠 때입니다.",
	Plan: [3]string{
		"미뤄 두었던 목표 하나를 골라 이번 주 안에 첫 단계를 실행하세요.",
		"내가 잘하는 일을 주변 사람과 나누거나 가르칠 기회를 만들어 보세요.",
		"작은 성취를 기록해 다음 도전의 근거로 삼으세요.",
	},
}

// DecodeNarrative picks the narrative for a gap level. Levels above RestThreshold
// get the rest narrative; everything else, including out-of-range and NaN input,
// gets the growth narrative.
func DecodeNarrative(gapLevel float64) Narrative {
	if gapLevel > RestThreshold {
		return restNarrative
	}
	return growthNarrative
}

// Narrative returns the narrative for the result's gap level.
func (r Result) Narrative() Narrative {
	return DecodeNarrative(float64(r.GapLevel))
}
