package model

import "time"

// Flight represents one scheduled departure together with the cargo manifest
// entries attached to it.  Flights are built once when the dataset is loaded
// and are only read afterwards.
//
// FlightNumber together with the calendar day of DepartureDate identifies
// a flight; FlightID is only the dataset key that separate cargo entries
// refer to.  Airport codes are three-letter IATA codes and DepartureDate is
// the scheduled departure on the origin's wall clock.  Cargo lists manifest
// entries in load order and may be nil.
type Flight struct {
	FlightID                 int       `json:"flightId"`
	FlightNumber             int       `json:"flightNumber"`
	DepartureAirportIATACode string    `json:"departureAirportIATACode"`
	ArrivalAirportIATACode   string    `json:"arrivalAirportIATACode"`
	DepartureDate            time.Time `json:"departureDate"`
	Cargo                    []Cargo   `json:"cargo"`
}

// DepartsOn reports whether the flight leaves on the given calendar date.
// Arrivals are matched on this date too; the dataset has no arrival time.
func (f Flight) DepartsOn(d Date) bool {
	return DateOf(f.DepartureDate) == d
}
