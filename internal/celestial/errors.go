// Package celestial maps a birth instant onto the 64-gate wheel of the ecliptic.
package celestial

import (
	"fmt"
	"time"
)

// EphemerisError indicates the solar longitude for an instant could not be computed.
type EphemerisError struct {
	Instant time.Time
	Message string
	Cause   error
}

func (e *EphemerisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ephemeris failed for %s: %s: %v", e.Instant.Format(time.RFC3339), e.Message, e.Cause)
	}
	return fmt.Sprintf("ephemeris failed for %s: %s", e.Instant.Format(time.RFC3339), e.Message)
}

func (e *EphemerisError) Unwrap() error {
	return e.Cause
}
