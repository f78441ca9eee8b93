package repository

import (
	"strings"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
)

// FlightRepo answers lookups over the in-memory flight dataset.  The slice
// is handed over once at construction and never written again, so any
// number of goroutines may call its methods without locking.
type FlightRepo struct {
	flights []model.Flight // dataset in load order
}

// NewFlightRepo constructs a FlightRepo that owns flights.  Callers must not
// modify the slice afterwards.
func NewFlightRepo(flights []model.Flight) *FlightRepo {
	return &FlightRepo{flights: flights}
}

// Len returns the number of flights in the dataset.
func (r *FlightRepo) Len() int {
	return len(r.flights)
}

// All returns a copy of the flight list header.  Flights are values, but
// their cargo slices are shared and must be treated as read-only.
func (r *FlightRepo) All() []model.Flight {
	out := make([]model.Flight, len(r.flights))
	copy(out, r.flights)
	return out
}

// FindByNumberAndDate returns the first flight in load order with the given
// number that departs on date.  ok is false when there is none.
func (r *FlightRepo) FindByNumberAndDate(number int, date model.Date) (model.Flight, bool) {
	for _, f := range r.flights {
		if f.FlightNumber == number && f.DepartsOn(date) {
			return f, true
		}
	}
	return model.Flight{}, false
}

// CountDeparting counts flights leaving airport iata on date.
func (r *FlightRepo) CountDeparting(iata string, date model.Date) int {
	return r.count(departingFrom(iata, date))
}

// CountArriving counts flights bound for airport iata that depart on date.
func (r *FlightRepo) CountArriving(iata string, date model.Date) int {
	return r.count(arrivingAt(iata, date))
}

// TotalArrivingBaggage sums baggage pieces of flights bound for iata on date.
func (r *FlightRepo) TotalArrivingBaggage(iata string, date model.Date) int {
	return r.baggagePieces(arrivingAt(iata, date))
}

// TotalDepartingBaggage sums baggage pieces of flights leaving iata on date.
func (r *FlightRepo) TotalDepartingBaggage(iata string, date model.Date) int {
	return r.baggagePieces(departingFrom(iata, date))
}

type flightFilter func(model.Flight) bool

// airport codes compare case-insensitively
func departingFrom(iata string, date model.Date) flightFilter {
	return func(f model.Flight) bool {
		return strings.EqualFold(f.DepartureAirportIATACode, iata) && f.DepartsOn(date)
	}
}

func arrivingAt(iata string, date model.Date) flightFilter {
	return func(f model.Flight) bool {
		return strings.EqualFold(f.ArrivalAirportIATACode, iata) && f.DepartsOn(date)
	}
}

func (r *FlightRepo) count(match flightFilter) int {
	n := 0
	for _, f := range r.flights {
		if match(f) {
			n++
		}
	}
	return n
}

func (r *FlightRepo) baggagePieces(match flightFilter) int {
	total := 0
	for _, f := range r.flights {
		if !match(f) {
			continue
		}
		for _, c := range f.Cargo {
			for _, b := range c.Baggage {
				total += b.Pieces
			}
		}
	}
	return total
}
