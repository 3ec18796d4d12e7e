package saju

import (
	"math"
	"time"

	"github.com/jonathan/saju-coach/internal/celestial"
)

const (
	// lichunLongitude is the solar longitude of 立春, where the Saju year and the Tiger month begin.
	lichunLongitude = 315.0
	// solarTermWidth is the arc of one Saju month (two solar terms).
	solarTermWidth = 30.0
)

// Compute builds the chart for birth. The year and month pillars follow the Sun's
// longitude; the day and hour pillars follow the local civil calendar and clock.
func Compute(birth BirthMoment, eph celestial.Ephemeris) (*Chart, error) {
	sun, err := celestial.ComputeLongitude(eph, birth.Time)
	if err != nil {
		return nil, err
	}
	return ComputeWithLongitude(birth, sun), nil
}

// ComputeWithLongitude builds the chart when the Sun longitude is already known.
func ComputeWithLongitude(birth BirthMoment, sun float64) *Chart {
	sun = celestial.Normalize(sun)
	local := birth.Time

	chart := &Chart{SunLongitude: sun}
	chart.Year = yearPillar(local, sun)
	chart.Month = monthPillar(chart.Year.Stem, sun)
	chart.Day = dayPillar(local)
	if birth.HourKnown {
		hour := hourPillar(chart.Day.Stem, local.Hour())
		chart.Hour = &hour
	}

	for _, p := range chart.Pillars() {
		chart.Elements.Add(p.Stem.Element())
		chart.Elements.Add(p.Branch.Element())
	}
	return chart
}

func yearPillar(local time.Time, sun float64) Pillar {
	year := local.Year()
	// January and early February belong to the previous year until Lichun.
	if local.Month() <= time.February && sun >= 270 && sun < lichunLongitude {
		year--
	}
	return Pillar{Stem: Stem(mod(year-4, 10)), Branch: Branch(mod(year-4, 12))}
}

// MonthIndex is the Saju month (0 = 寅 month) containing the given Sun longitude.
func MonthIndex(sun float64) int {
	idx := int(math.Floor(celestial.Normalize(sun-lichunLongitude) / solarTermWidth))
	if idx < 0 {
		return 0
	}
	if idx > 11 {
		return 11
	}
	return idx
}

func monthPillar(yearStem Stem, sun float64) Pillar {
	m := MonthIndex(sun)
	first := mod(int(yearStem), 5)*2 + 2
	return Pillar{Stem: Stem(mod(first+m, 10)), Branch: Branch(mod(2+m, 12))}
}

func dayPillar(local time.Time) Pillar {
	idx := mod(JulianDayNumber(local.Year(), local.Month(), local.Day())+49, 60)
	return Pillar{Stem: Stem(idx % 10), Branch: Branch(idx % 12)}
}

func hourPillar(dayStem Stem, hour int) Pillar {
	branch := mod((hour+1)/2, 12)
	first := mod(int(dayStem), 5) * 2
	return Pillar{Stem: Stem(mod(first+branch, 10)), Branch: Branch(branch)}
}

// JulianDayNumber returns the integer Julian day number of a Gregorian calendar date.
func JulianDayNumber(year int, month time.Month, day int) int {
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}
