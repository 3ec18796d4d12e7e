package types

import (
	"github.com/jonathan/saju-coach/internal/gap"
)

// GapRequest asks for a gap score. The acquired side is taken from the first
// of Acquired, TypeCode and Answers that is present.
type GapRequest struct {
	Innate   []float64    `json:"innate" validate:"required,min=1,max=16"`
	Acquired []float64    `json:"acquired,omitempty" validate:"omitempty,max=16"`
	TypeCode string       `json:"type_code,omitempty" validate:"omitempty,typecode"`
	Answers  []gap.Answer `json:"answers,omitempty" validate:"omitempty,max=64,dive"`
}

// Validate validates the GapRequest using the validator.
func (r *GapRequest) Validate() error {
	return validate.Struct(r)
}

// AcquiredVector resolves the acquired side of the request. It returns nil
// when nothing usable was sent, which the scorer treats as missing input.
func (r *GapRequest) AcquiredVector() gap.TraitVector {
	if len(r.Acquired) > 0 {
		return gap.TraitVector(r.Acquired)
	}
	if r.TypeCode != "" {
		if v, err := gap.FromTypeCode(r.TypeCode); err == nil {
			return v
		}
	}
	return gap.FromAnswers(r.Answers)
}

// GapResponse is a gap score with its narrative.
type GapResponse struct {
	gap.Result
	Narrative gap.Narrative `json:"narrative"`
}

// NewGapResponse attaches the narrative to a result.
func NewGapResponse(result gap.Result) *GapResponse {
	return &GapResponse{Result: result, Narrative: result.Narrative()}
}
