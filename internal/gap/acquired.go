package gap

import (
	"strings"

	"github.com/jonathan/saju-coach/internal/saju"
)

// letterWeight is what each personality-type letter adds to its element axis.
const letterWeight = 2.0

var letterElements = map[rune]saju.Element{
	'E': saju.Fire,
	'I': saju.Water,
	'S': saju.Earth,
	'N': saju.Wood,
	'T': saju.Metal,
	'F': saju.Fire,
	'J': saju.Earth,
	'P': saju.Water,
}

// typeAxes lists the valid letters for each position of a type code.
var typeAxes = [4]string{"EI", "SN", "TF", "JP"}

// NormalizeTypeCode upper-cases and validates a 4-letter personality type code.
func NormalizeTypeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != len(typeAxes) {
		return "", &InvalidTypeCodeError{Code: code}
	}
	for i, r := range normalized {
		if !strings.ContainsRune(typeAxes[i], r) {
			return "", &InvalidTypeCodeError{Code: code}
		}
	}
	return normalized, nil
}

// FromTypeCode encodes a personality type code as an acquired trait vector.
// Each of the four letters adds letterWeight to one element axis, so the vector
// has the same total weight as an 8-character chart.
func FromTypeCode(code string) (TraitVector, error) {
	normalized, err := NormalizeTypeCode(code)
	if err != nil {
		return nil, err
	}
	v := make(TraitVector, Dimensions)
	for _, r := range normalized {
		v[letterElements[r]] += letterWeight
	}
	return v, nil
}

// Answer is one selected option from the self-assessment questionnaire.
type Answer struct {
	Element saju.Element `json:"element" validate:"gte=0,lte=4"`
	Weight  float64      `json:"weight" validate:"gte=0,lte=10"`
}

// FromAnswers accumulates questionnaire answers into an acquired trait vector.
// Answers with an unknown element are ignored. No answers yields nil, which
// CalculateGap treats as missing data.
func FromAnswers(answers []Answer) TraitVector {
	if len(answers) == 0 {
		return nil
	}
	v := make(TraitVector, Dimensions)
	for _, a := range answers {
		if a.Element < 0 || int(a.Element) >= Dimensions {
			continue
		}
		v[a.Element] += a.Weight
	}
	return v
}
