// Package queue defines message payloads exchanged over the message broker.
package queue

// SummaryServedQueue is the durable queue summary events are routed to.
const SummaryServedQueue = "summary.served"

// Summary kinds carried in SummaryServedEvent.Kind.
const (
	KindFlight  = "flight"
	KindAirport = "airport"
)

// SummaryServedEvent is published each time a flight or airport summary is
// returned to a client.  It carries the figures that were served so that
// downstream consumers can log or analyse traffic without access to the
// dataset.
type SummaryServedEvent struct {
	Kind         string         `json:"kind"`
	FlightNumber int            `json:"flight_number,omitempty"`
	IATACode     string         `json:"iata_code,omitempty"`
	Date         string         `json:"date"`
	Figures      map[string]int `json:"figures"`
	ServedAt     string         `json:"served_at"`
}
