package celestial

import "math"

const (
	// GateCount is the number of gates on the wheel.
	GateCount = 64
	// GateWidth is the arc covered by one gate, in degrees.
	GateWidth = 360.0 / GateCount
	// WheelStart is the longitude where the first gate of the mandala order begins.
	WheelStart = 302.0
)

// mandalaOrder is the conventional sequence of gates around the wheel starting at WheelStart.
var mandalaOrder = [GateCount]int{
	41, 19, 13, 49, 30, 55, 37, 63,
	22, 36, 25, 17, 21, 51, 42, 3,
	27, 24, 2, 23, 8, 20, 16, 35,
	45, 12, 15, 52, 39, 53, 62, 56,
	31, 33, 7, 4, 29, 59, 40, 64,
	47, 6, 46, 18, 48, 57, 32, 50,
	28, 44, 1, 43, 14, 34, 9, 5,
	26, 11, 10, 58, 38, 54, 61, 60,
}

// MandalaOrder returns a copy of the wheel order table.
func MandalaOrder() [GateCount]int {
	return mandalaOrder
}

// GateIndex returns the wheel slot (0-63) that contains longitude.
// Values outside [0, 360) are wrapped first; NaN and infinities land in slot 0.
func GateIndex(longitude float64) int {
	relative := Normalize(longitude - WheelStart)
	if math.IsNaN(relative) {
		return 0
	}
	index := int(math.Floor(relative / GateWidth))
	// guards float edge cases at the 360/0 seam
	if index < 0 {
		return 0
	}
	if index >= GateCount {
		return GateCount - 1
	}
	return index
}

// GateOf maps an ecliptic longitude to its gate number (1-64).
func GateOf(longitude float64) int {
	return mandalaOrder[GateIndex(longitude)]
}

// GateStart returns the longitude at which the gate in the given wheel slot begins.
func GateStart(index int) float64 {
	return Normalize(WheelStart + float64(index)*GateWidth)
}
