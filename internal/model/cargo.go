package model

// Cargo is a single manifest entry of a flight.  It groups passenger
// baggage and freight items loaded under the same entry.
type Cargo struct {
	Baggage []Baggage   `json:"baggage"` // checked passenger baggage (may be nil)
	Cargo   []CargoItem `json:"cargo"`   // freight items (may be nil)
}

// Baggage describes a batch of identical baggage pieces.  Weight is given
// per piece in WeightUnit ("kg" or "lb", any case).
type Baggage struct {
	Pieces     int    `json:"pieces"`
	Weight     int    `json:"weight"`
	WeightUnit string `json:"weightUnit"`
}

// CargoItem describes a batch of identical freight pieces.
type CargoItem struct {
	Pieces     int    `json:"pieces"`
	Weight     int    `json:"weight"`
	WeightUnit string `json:"weightUnit"`
}
