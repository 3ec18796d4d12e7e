package insight

import (
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/saju"
)

// Persona is the inferred personality summary used in the prompt.
type Persona struct {
	Archetype string       `json:"archetype"`
	Traits    []string     `json:"traits"`
	Dominant  saju.Element `json:"dominant"`
	Weakest   saju.Element `json:"weakest"`
	TypeCode  string       `json:"type_code,omitempty"`
}

type archetype struct {
	name   string
	traits []string
}

var archetypes = map[saju.Element]archetype{
	saju.Wood:  {"뻗어가는 나무형", []string{"성장 지향", "새로운 시작을 즐김", "곧은 원칙"}},
	saju.Fire:  {"타오르는 불꽃형", []string{"표현력", "열정", "사람을 끌어당기는 에너지"}},
	saju.Earth: {"단단한 대지형", []string{"안정감", "책임감", "중재와 포용"}},
	saju.Metal: {"벼려진 쇠형", []string{"결단력", "명확한 기준", "완성도에 대한 집착"}},
	saju.Water: {"흐르는 물형", []string{"통찰", "유연함", "깊은 생각"}},
}

// InferPersonality derives a persona from the chart's element balance. A valid
// type code is echoed back normalized; an invalid one is dropped.
func InferPersonality(chart *saju.Chart, typeCode string) Persona {
	var p Persona
	if chart != nil {
		p.Dominant = chart.Elements.Dominant()
		p.Weakest = chart.Elements.Weakest()
	}
	a := archetypes[p.Dominant]
	p.Archetype = a.name
	p.Traits = append([]string(nil), a.traits...)

	if normalized, err := gap.NormalizeTypeCode(typeCode); err == nil {
		p.TypeCode = normalized
	}
	return p
}
