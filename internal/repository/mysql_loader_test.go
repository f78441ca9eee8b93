package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
	"github.com/iliyamo/flight-cargo-summary/internal/weight"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() ([]model.Flight, LoadStats, error)) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, func() ([]model.Flight, LoadStats, error) {
		return Load(context.Background(), LoadOptions{Source: SourceMySQL, DB: db})
	}
}

func TestLoadFlightsMySQL(t *testing.T) {
	mock, load := newMock(t)
	dep := time.Date(2024, time.March, 1, 7, 15, 0, 0, time.UTC)

	mock.ExpectQuery(qSelectFlights).WillReturnRows(
		sqlmock.NewRows([]string{"id", "flight_number", "departure_airport_iata_code", "arrival_airport_iata_code", "departure_date"}).
			AddRow(int64(10), int64(100), "JFK", "LAX", dep).
			AddRow(int64(11), int64(200), "LAX", "JFK", dep.Add(24*time.Hour)))
	mock.ExpectQuery(qSelectCargo).WillReturnRows(
		sqlmock.NewRows([]string{"id", "flight_id"}).
			AddRow(int64(1), int64(10)).
			AddRow(int64(2), int64(10)).
			AddRow(int64(3), int64(99)))
	mock.ExpectQuery(qSelectBaggage).WillReturnRows(
		sqlmock.NewRows([]string{"cargo_id", "pieces", "weight", "weight_unit"}).
			AddRow(int64(1), int64(2), int64(10), "kg").
			AddRow(int64(3), int64(5), int64(5), "kg"))
	mock.ExpectQuery(qSelectItems).WillReturnRows(
		sqlmock.NewRows([]string{"cargo_id", "pieces", "weight", "weight_unit"}).
			AddRow(int64(2), int64(1), int64(10), "lb").
			AddRow(int64(2), int64(1), int64(4), nil))

	flights, stats, err := load()
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, LoadStats{Flights: 2, CargoAttached: 2, CargoUnmatched: 1}, stats)
	require.Len(t, flights, 2)
	assert.Equal(t, 10, flights[0].FlightID)
	assert.Equal(t, 100, flights[0].FlightNumber)
	assert.True(t, flights[0].DepartureDate.Equal(dep))
	require.Len(t, flights[0].Cargo, 2)
	assert.Equal(t, []model.Baggage{{Pieces: 2, Weight: 10, WeightUnit: "kg"}}, flights[0].Cargo[0].Baggage)
	assert.Equal(t, []model.CargoItem{
		{Pieces: 1, Weight: 10, WeightUnit: "lb"},
		{Pieces: 1, Weight: 4, WeightUnit: ""},
	}, flights[0].Cargo[1].Cargo)
	assert.Empty(t, flights[1].Cargo)

	// 2*10 + 5 + 4
	assert.Equal(t, 29, weight.FlightCargoWeight(flights[0]))
}

func TestLoadFlightsMySQLQueryError(t *testing.T) {
	mock, load := newMock(t)
	boom := errors.New("boom")
	mock.ExpectQuery(qSelectFlights).WillReturnError(boom)

	_, _, err := load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFlightsMySQLItemsError(t *testing.T) {
	mock, load := newMock(t)
	boom := errors.New("items unavailable")

	mock.ExpectQuery(qSelectFlights).WillReturnRows(
		sqlmock.NewRows([]string{"id", "flight_number", "departure_airport_iata_code", "arrival_airport_iata_code", "departure_date"}))
	mock.ExpectQuery(qSelectCargo).WillReturnRows(sqlmock.NewRows([]string{"id", "flight_id"}))
	mock.ExpectQuery(qSelectBaggage).WillReturnRows(sqlmock.NewRows([]string{"cargo_id", "pieces", "weight", "weight_unit"}))
	mock.ExpectQuery(qSelectItems).WillReturnError(boom)

	_, _, err := load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "cargo items")
}
