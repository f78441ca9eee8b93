package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
)

// Queries used to read the dataset.  Ordering by primary key keeps the
// collection order stable between loads.
const (
	qSelectFlights = "SELECT id, flight_number, departure_airport_iata_code, arrival_airport_iata_code, departure_date FROM flights ORDER BY id"
	qSelectCargo   = "SELECT id, flight_id FROM cargo ORDER BY flight_id, id"
	qSelectBaggage = "SELECT cargo_id, pieces, weight, weight_unit FROM baggage ORDER BY cargo_id, id"
	qSelectItems   = "SELECT cargo_id, pieces, weight, weight_unit FROM cargo_items ORDER BY cargo_id, id"
)

// cargoPos locates a cargo row inside the flight slice being assembled.
type cargoPos struct {
	flight int
	cargo  int
}

// LoadFlightsMySQL reads flights, cargo, baggage and cargo_items and
// assembles them into the flight tree.  Cargo rows referencing an unknown
// flight are skipped and counted; baggage and item rows referencing an
// unknown cargo row are skipped.
func LoadFlightsMySQL(ctx context.Context, db *sql.DB) ([]model.Flight, LoadStats, error) {
	var stats LoadStats

	flights, byID, err := selectFlights(ctx, db)
	if err != nil {
		return nil, stats, err
	}
	stats.Flights = len(flights)

	rows, err := db.QueryContext(ctx, qSelectCargo)
	if err != nil {
		return nil, stats, fmt.Errorf("select cargo: %w", err)
	}
	cargoByID := map[uint64]cargoPos{}
	for rows.Next() {
		var id, flightID uint64
		if err := rows.Scan(&id, &flightID); err != nil {
			rows.Close()
			return nil, stats, fmt.Errorf("scan cargo: %w", err)
		}
		fi, ok := byID[flightID]
		if !ok {
			stats.CargoUnmatched++
			continue
		}
		flights[fi].Cargo = append(flights[fi].Cargo, model.Cargo{})
		cargoByID[id] = cargoPos{flight: fi, cargo: len(flights[fi].Cargo) - 1}
		stats.CargoAttached++
	}
	if err := closeRows(rows, "cargo"); err != nil {
		return nil, stats, err
	}

	err = selectPieces(ctx, db, qSelectBaggage, func(cargoID uint64, pieces, weight int, unit string) {
		if pos, ok := cargoByID[cargoID]; ok {
			c := &flights[pos.flight].Cargo[pos.cargo]
			c.Baggage = append(c.Baggage, model.Baggage{Pieces: pieces, Weight: weight, WeightUnit: unit})
		}
	})
	if err != nil {
		return nil, stats, fmt.Errorf("baggage: %w", err)
	}

	err = selectPieces(ctx, db, qSelectItems, func(cargoID uint64, pieces, weight int, unit string) {
		if pos, ok := cargoByID[cargoID]; ok {
			c := &flights[pos.flight].Cargo[pos.cargo]
			c.Cargo = append(c.Cargo, model.CargoItem{Pieces: pieces, Weight: weight, WeightUnit: unit})
		}
	})
	if err != nil {
		return nil, stats, fmt.Errorf("cargo items: %w", err)
	}

	return flights, stats, nil
}

func selectFlights(ctx context.Context, db *sql.DB) ([]model.Flight, map[uint64]int, error) {
	rows, err := db.QueryContext(ctx, qSelectFlights)
	if err != nil {
		return nil, nil, fmt.Errorf("select flights: %w", err)
	}
	flights := []model.Flight{}
	byID := map[uint64]int{}
	for rows.Next() {
		var (
			id        uint64
			f         model.Flight
			departure time.Time
		)
		if err := rows.Scan(&id, &f.FlightNumber, &f.DepartureAirportIATACode, &f.ArrivalAirportIATACode, &departure); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan flight: %w", err)
		}
		f.FlightID = int(id)
		f.DepartureDate = departure
		byID[id] = len(flights)
		flights = append(flights, f)
	}
	if err := closeRows(rows, "flights"); err != nil {
		return nil, nil, err
	}
	return flights, byID, nil
}

// selectPieces runs one of the baggage/item queries and calls add per row.
// A NULL weight_unit is passed on as "", which counts as kilograms.
func selectPieces(ctx context.Context, db *sql.DB, query string, add func(cargoID uint64, pieces, weight int, unit string)) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	for rows.Next() {
		var (
			cargoID        uint64
			pieces, weight int
			unit           sql.NullString
		)
		if err := rows.Scan(&cargoID, &pieces, &weight, &unit); err != nil {
			rows.Close()
			return fmt.Errorf("scan: %w", err)
		}
		add(cargoID, pieces, weight, unit.String)
	}
	return closeRows(rows, "pieces")
}

func closeRows(rows *sql.Rows, what string) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate %s: %w", what, err)
	}
	return rows.Close()
}
