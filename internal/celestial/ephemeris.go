package celestial

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
)

// Ephemeris returns the Sun's apparent ecliptic longitude, in degrees, at an instant.
type Ephemeris interface {
	SolarLongitude(t time.Time) (float64, error)
}

// EphemerisFunc adapts a plain function to the Ephemeris interface.
type EphemerisFunc func(t time.Time) (float64, error)

// SolarLongitude calls f(t).
func (f EphemerisFunc) SolarLongitude(t time.Time) (float64, error) {
	return f(t)
}

// MeeusEphemeris computes apparent solar longitude with the low-precision solar
// theory from Meeus, "Astronomical Algorithms" ch. 25 (accurate to ~0.01°).
type MeeusEphemeris struct{}

// SolarLongitude implements Ephemeris.
func (MeeusEphemeris) SolarLongitude(t time.Time) (float64, error) {
	// julian.TimeToJD ignores the zone offset, so convert first.
	jd := julian.TimeToJD(t.UTC())
	lon := solar.ApparentLongitude(base.J2000Century(jd)).Deg()
	return lon, nil
}

// ComputeLongitude returns the apparent solar longitude at t, normalized into [0, 360).
// A failing or non-finite ephemeris result is reported as *EphemerisError.
func ComputeLongitude(eph Ephemeris, t time.Time) (float64, error) {
	if eph == nil {
		return 0, &EphemerisError{Instant: t, Message: "no ephemeris configured"}
	}
	lon, err := eph.SolarLongitude(t)
	if err != nil {
		return 0, &EphemerisError{Instant: t, Message: "solar longitude unavailable", Cause: err}
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, &EphemerisError{Instant: t, Message: "solar longitude is not finite"}
	}
	return Normalize(lon), nil
}

// Normalize wraps any finite degree value into [0, 360).
func Normalize(deg float64) float64 {
	n := math.Mod(math.Mod(deg, 360)+360, 360)
	// math.Mod can return exactly 360 for tiny negative inputs.
	if n >= 360 {
		n = 0
	}
	return n
}
