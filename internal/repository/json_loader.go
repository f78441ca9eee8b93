package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
)

// departureLayouts lists the accepted departureDate formats, most specific
// first.  Offset-less values are read as wall-clock times.
var departureLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// flightRecord mirrors one element of flight-data.json.  departureDate is
// kept as a string so that local date-times without an offset are accepted.
type flightRecord struct {
	FlightID                 int           `json:"flightId"`
	FlightNumber             int           `json:"flightNumber"`
	DepartureAirportIATACode string        `json:"departureAirportIATACode"`
	ArrivalAirportIATACode   string        `json:"arrivalAirportIATACode"`
	DepartureDate            string        `json:"departureDate"`
	Cargo                    []model.Cargo `json:"cargo"`
}

// CargoEntry is one element of cargo-data.json: a manifest entry that
// belongs to the flight with FlightID.
type CargoEntry struct {
	FlightID int               `json:"flightId"`
	Baggage  []model.Baggage   `json:"baggage"`
	Cargo    []model.CargoItem `json:"cargo"`
}

// LoadStats reports what a loader did, for the startup log line.
type LoadStats struct {
	Flights        int // flights read
	CargoAttached  int // separate cargo entries attached to a flight
	CargoUnmatched int // separate cargo entries whose flight was not found
}

// LoadFlightsFile reads the flight dataset from flightPath.  When cargoPath
// is not empty the entries found there are attached to their flights.
func LoadFlightsFile(flightPath, cargoPath string) ([]model.Flight, LoadStats, error) {
	var stats LoadStats

	f, err := os.Open(filepath.Clean(flightPath))
	if err != nil {
		return nil, stats, fmt.Errorf("open flight data: %w", err)
	}
	defer f.Close()

	flights, err := DecodeFlights(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", flightPath, err)
	}
	stats.Flights = len(flights)

	if cargoPath == "" {
		return flights, stats, nil
	}

	cf, err := os.Open(filepath.Clean(cargoPath))
	if err != nil {
		return nil, stats, fmt.Errorf("open cargo data: %w", err)
	}
	defer cf.Close()

	entries, err := DecodeCargo(cf)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", cargoPath, err)
	}
	stats.CargoUnmatched = AttachCargo(flights, entries)
	stats.CargoAttached = len(entries) - stats.CargoUnmatched
	return flights, stats, nil
}

// DecodeFlights decodes a JSON array of flight records.
func DecodeFlights(r io.Reader) ([]model.Flight, error) {
	var records []flightRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode flights: %w", err)
	}

	flights := make([]model.Flight, 0, len(records))
	for _, rec := range records {
		departure, err := parseDeparture(rec.DepartureDate)
		if err != nil {
			return nil, fmt.Errorf("flight %d: %w", rec.FlightID, err)
		}
		flights = append(flights, model.Flight{
			FlightID:                 rec.FlightID,
			FlightNumber:             rec.FlightNumber,
			DepartureAirportIATACode: rec.DepartureAirportIATACode,
			ArrivalAirportIATACode:   rec.ArrivalAirportIATACode,
			DepartureDate:            departure,
			Cargo:                    rec.Cargo,
		})
	}
	return flights, nil
}

// DecodeCargo decodes a JSON array of cargo entries.
func DecodeCargo(r io.Reader) ([]CargoEntry, error) {
	var entries []CargoEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode cargo: %w", err)
	}
	return entries, nil
}

// AttachCargo appends every entry, in order, to the cargo list of each flight
// carrying its FlightID.  It returns how many entries matched no flight.
// It must only be called while the dataset is still being built.
func AttachCargo(flights []model.Flight, entries []CargoEntry) int {
	byID := make(map[int][]int, len(flights))
	for i, f := range flights {
		byID[f.FlightID] = append(byID[f.FlightID], i)
	}

	unmatched := 0
	for _, e := range entries {
		idx, ok := byID[e.FlightID]
		if !ok {
			unmatched++
			continue
		}
		for _, i := range idx {
			flights[i].Cargo = append(flights[i].Cargo, model.Cargo{Baggage: e.Baggage, Cargo: e.Cargo})
		}
	}
	return unmatched
}

func parseDeparture(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDepartureDate
	}
	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDepartureDate, s)
}
