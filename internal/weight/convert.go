// Package weight converts weight units and aggregates the weights carried by
// a flight.
package weight

import (
	"math"
	"strings"
)

// KilogramsPerPound is the conversion factor applied to "lb" weights.
const KilogramsPerPound = 0.453592

// ToKilograms converts weight given in unit to whole kilograms.  Only "lb"
// (any case) is converted; every other unit, including an empty or unknown
// one, is taken to be kilograms already.
func ToKilograms(weight int, unit string) int {
	if strings.EqualFold(unit, "lb") {
		return int(math.Round(float64(weight) * KilogramsPerPound))
	}
	return weight
}
