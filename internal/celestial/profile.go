package celestial

import "time"

const (
	earthOffset       = 180.0
	designSunOffset   = -88.0
	designEarthOffset = 92.0
)

// Longitudes holds the four positions derived from a single personality Sun longitude.
type Longitudes struct {
	PersonalitySun   float64 `json:"personality_sun"`
	PersonalityEarth float64 `json:"personality_earth"`
	DesignSun        float64 `json:"design_sun"`
	DesignEarth      float64 `json:"design_earth"`
}

// DeriveLongitudes computes every position from sun. Design Earth is taken from
// sun directly instead of from DesignSun so rounding does not compound.
func DeriveLongitudes(sun float64) Longitudes {
	sun = Normalize(sun)
	return Longitudes{
		PersonalitySun:   sun,
		PersonalityEarth: Normalize(sun + earthOffset),
		DesignSun:        Normalize(sun + designSunOffset),
		DesignEarth:      Normalize(sun + designEarthOffset),
	}
}

// NeuralProfile is the set of four gates computed for one birth instant.
type NeuralProfile struct {
	LifeWork   int        `json:"life_work"`
	Evolution  int        `json:"evolution"`
	Radiance   int        `json:"radiance"`
	Purpose    int        `json:"purpose"`
	Longitudes Longitudes `json:"longitudes"`
}

// ProfileFromLongitude maps an already computed Sun longitude to a NeuralProfile.
func ProfileFromLongitude(sun float64) NeuralProfile {
	lons := DeriveLongitudes(sun)
	return NeuralProfile{
		LifeWork:   GateOf(lons.PersonalitySun),
		Evolution:  GateOf(lons.PersonalityEarth),
		Radiance:   GateOf(lons.DesignSun),
		Purpose:    GateOf(lons.DesignEarth),
		Longitudes: lons,
	}
}

// ComputeProfile computes the NeuralProfile for a birth instant.
func ComputeProfile(eph Ephemeris, birth time.Time) (*NeuralProfile, error) {
	sun, err := ComputeLongitude(eph, birth)
	if err != nil {
		return nil, err
	}
	profile := ProfileFromLongitude(sun)
	return &profile, nil
}
