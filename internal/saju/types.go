// Package saju computes the Four Pillars (year, month, day and hour) of a birth moment.
package saju

import (
	"fmt"
	"time"
)

// Element is one of the five phases.
type Element int

// Element constants, in generating-cycle order.
const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
)

// ElementCount is the number of elements; it is also the trait-vector dimensionality.
const ElementCount = 5

var elementNames = [ElementCount]string{"wood", "fire", "earth", "metal", "water"}
var elementHanja = [ElementCount]string{"木", "火", "土", "金", "水"}

func (e Element) String() string {
	if e < 0 || int(e) >= ElementCount {
		return fmt.Sprintf("element(%d)", int(e))
	}
	return elementNames[e]
}

// Hanja returns the element's character.
func (e Element) Hanja() string {
	if e < 0 || int(e) >= ElementCount {
		return "?"
	}
	return elementHanja[e]
}

// ParseElement accepts an element's English name or its character.
func ParseElement(s string) (Element, error) {
	for i := 0; i < ElementCount; i++ {
		if s == elementNames[i] || s == elementHanja[i] {
			return Element(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Element) UnmarshalText(text []byte) error {
	parsed, err := ParseElement(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Stem is one of the ten heavenly stems, 0 = 甲.
type Stem int

var stemHanja = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

func (s Stem) String() string { return stemHanja[mod(int(s), 10)] }

// Element returns the stem's element; stems pair up per element.
func (s Stem) Element() Element { return Element(mod(int(s), 10) / 2) }

// Yang reports whether the stem is yang.
func (s Stem) Yang() bool { return mod(int(s), 2) == 0 }

// Branch is one of the twelve earthly branches, 0 = 子.
type Branch int

var branchHanja = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var branchElements = [12]Element{Water, Earth, Wood, Wood, Earth, Fire, Fire, Earth, Metal, Metal, Earth, Water}

func (b Branch) String() string { return branchHanja[mod(int(b), 12)] }

// Element returns the branch's principal element.
func (b Branch) Element() Element { return branchElements[mod(int(b), 12)] }

// Pillar is a stem/branch pair.
type Pillar struct {
	Stem   Stem
	Branch Branch
}

func (p Pillar) String() string { return p.Stem.String() + p.Branch.String() }

// MarshalText renders the pillar as its two characters.
func (p Pillar) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Cycle returns the pillar's position (0-59) in the sexagenary cycle.
func (p Pillar) Cycle() int {
	s, b := mod(int(p.Stem), 10), mod(int(p.Branch), 12)
	for i := 0; i < 60; i++ {
		if i%10 == s && i%12 == b {
			return i
		}
	}
	return -1
}

// ElementCounts tallies chart characters per element.
type ElementCounts [ElementCount]int

// Add increments the count for e.
func (c *ElementCounts) Add(e Element) {
	if e >= 0 && int(e) < ElementCount {
		c[e]++
	}
}

// Total is the number of characters counted.
func (c ElementCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Dominant returns the most frequent element; ties go to the earlier element.
func (c ElementCounts) Dominant() Element {
	best := Wood
	for e := Wood; e <= Water; e++ {
		if c[e] > c[best] {
			best = e
		}
	}
	return best
}

// Weakest returns the least frequent element; ties go to the earlier element.
func (c ElementCounts) Weakest() Element {
	worst := Wood
	for e := Wood; e <= Water; e++ {
		if c[e] < c[worst] {
			worst = e
		}
	}
	return worst
}

// Map returns the counts keyed by element name, for JSON output.
func (c ElementCounts) Map() map[string]int {
	m := make(map[string]int, ElementCount)
	for e := Wood; e <= Water; e++ {
		m[e.String()] = c[e]
	}
	return m
}

// BirthMoment is a birth date and clock time in the place of birth.
type BirthMoment struct {
	Time      time.Time
	HourKnown bool
}

// NewBirthMoment builds a BirthMoment from a local wall-clock reading.
func NewBirthMoment(year int, month time.Month, day, hour, minute int, loc *time.Location) BirthMoment {
	if loc == nil {
		loc = time.UTC
	}
	return BirthMoment{
		Time:      time.Date(year, month, day, hour, minute, 0, 0, loc),
		HourKnown: true,
	}
}

// Chart is a computed Four Pillars chart.
type Chart struct {
	Year         Pillar        `json:"year"`
	Month        Pillar        `json:"month"`
	Day          Pillar        `json:"day"`
	Hour         *Pillar       `json:"hour,omitempty"`
	Elements     ElementCounts `json:"-"`
	SunLongitude float64       `json:"sun_longitude"`
}

// DayMaster is the day stem, which represents the person in readings.
func (c *Chart) DayMaster() Stem {
	return c.Day.Stem
}

// Pillars returns the pillars present in the chart, year first.
func (c *Chart) Pillars() []Pillar {
	pillars := []Pillar{c.Year, c.Month, c.Day}
	if c.Hour != nil {
		pillars = append(pillars, *c.Hour)
	}
	return pillars
}

// InnateVector returns the element counts as a float tuple (wood, fire, earth, metal, water).
func (c *Chart) InnateVector() []float64 {
	v := make([]float64, ElementCount)
	for i, n := range c.Elements {
		v[i] = float64(n)
	}
	return v
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
