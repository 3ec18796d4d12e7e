package types

import (
	"fmt"
	"time"

	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/saju"
)

// Layouts accepted for the date and time fields of BirthRequest.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// BirthRequest carries a birth moment as entered by the user.
// An empty Time means the birth hour is unknown.
type BirthRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Timezone string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	TypeCode string `json:"type_code,omitempty" validate:"omitempty,typecode"`
}

// Validate validates the BirthRequest using the validator.
func (r *BirthRequest) Validate() error {
	return validate.Struct(r)
}

// Location resolves the request timezone, using fallback when none was given.
func (r *BirthRequest) Location(fallback *time.Location) (*time.Location, error) {
	if r.Timezone == "" {
		if fallback == nil {
			return time.UTC, nil
		}
		return fallback, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

// Moment converts the request into a BirthMoment. With an unknown hour the
// moment is placed at local noon, which keeps the civil date stable.
func (r *BirthRequest) Moment(fallback *time.Location) (saju.BirthMoment, error) {
	loc, err := r.Location(fallback)
	if err != nil {
		return saju.BirthMoment{}, err
	}

	day, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return saju.BirthMoment{}, fmt.Errorf("invalid birth date %q: %w", r.Date, err)
	}

	if r.Time == "" {
		m := saju.NewBirthMoment(day.Year(), day.Month(), day.Day(), 12, 0, loc)
		m.HourKnown = false
		return m, nil
	}

	clock, err := time.Parse(TimeLayout, r.Time)
	if err != nil {
		return saju.BirthMoment{}, fmt.Errorf("invalid birth time %q: %w", r.Time, err)
	}
	return saju.NewBirthMoment(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), loc), nil
}

// NormalizedTypeCode returns the upper-cased type code, or "" when absent or invalid.
func (r *BirthRequest) NormalizedTypeCode() string {
	code, err := gap.NormalizeTypeCode(r.TypeCode)
	if err != nil {
		return ""
	}
	return code
}

// BirthProfileResponse is the stored birth profile as shown to its owner.
type BirthProfileResponse struct {
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Timezone  string    `json:"timezone"`
	HourKnown bool      `json:"hour_known"`
	TypeCode  string    `json:"type_code,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBirthProfileResponse formats a birth instant in its own timezone.
func NewBirthProfileResponse(birthAt time.Time, timezone string, hourKnown bool, typeCode string, updatedAt time.Time) BirthProfileResponse {
	resp := BirthProfileResponse{
		Date:      birthAt.Format(DateLayout),
		Timezone:  timezone,
		HourKnown: hourKnown,
		TypeCode:  typeCode,
		UpdatedAt: updatedAt,
	}
	if hourKnown {
		resp.Time = birthAt.Format(TimeLayout)
	}
	return resp
}
