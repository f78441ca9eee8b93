package weight

import "github.com/iliyamo/flight-cargo-summary/internal/model"

// CargoWeight returns the weight in kilograms of one manifest entry: every
// baggage batch and every freight batch is converted per piece and then
// multiplied by its piece count.
func CargoWeight(c model.Cargo) int {
	total := 0
	for _, b := range c.Baggage {
		total += ToKilograms(b.Weight, b.WeightUnit) * b.Pieces
	}
	for _, item := range c.Cargo {
		total += ToKilograms(item.Weight, item.WeightUnit) * item.Pieces
	}
	return total
}

// FlightCargoWeight sums CargoWeight over all manifest entries of f.
func FlightCargoWeight(f model.Flight) int {
	total := 0
	for _, c := range f.Cargo {
		total += CargoWeight(c)
	}
	return total
}

// BaggageWeight adds the raw Weight field of every baggage batch of f, once
// per batch.  Units and piece counts are not applied here, so this figure
// differs from the baggage share inside FlightCargoWeight.
func BaggageWeight(f model.Flight) int {
	total := 0
	for _, c := range f.Cargo {
		for _, b := range c.Baggage {
			total += b.Weight
		}
	}
	return total
}

// TotalWeight is FlightCargoWeight plus BaggageWeight.
func TotalWeight(f model.Flight) int {
	return FlightCargoWeight(f) + BaggageWeight(f)
}
