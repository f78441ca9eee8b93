package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
	"github.com/iliyamo/flight-cargo-summary/internal/repository"
	"github.com/iliyamo/flight-cargo-summary/internal/service"
)

func testRepo() *repository.FlightRepo {
	return repository.NewFlightRepo([]model.Flight{
		{
			FlightID: 0, FlightNumber: 100,
			DepartureAirportIATACode: "JFK", ArrivalAirportIATACode: "LAX",
			DepartureDate: time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
			Cargo: []model.Cargo{{
				Baggage: []model.Baggage{{Pieces: 2, Weight: 10, WeightUnit: "kg"}},
				Cargo:   []model.CargoItem{{Pieces: 1, Weight: 10, WeightUnit: "lb"}},
			}},
		},
		{
			FlightID: 1, FlightNumber: 200,
			DepartureAirportIATACode: "LAX", ArrivalAirportIATACode: "JFK",
			DepartureDate: time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC),
			Cargo: []model.Cargo{{
				Baggage: []model.Baggage{{Pieces: 7, Weight: 3, WeightUnit: "lb"}},
			}},
		},
	})
}

func newEcho(s summaryService) *echo.Echo {
	e := echo.New()
	h := NewFlightHandler(s)
	e.GET("/api/flights/airport/:iataCode", h.GetAirportDetails)
	e.GET("/api/flights/:flightNumber", h.GetFlightDetails)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetFlightDetails(t *testing.T) {
	e := newEcho(service.NewSummaryService(testRepo(), nil))

	rec := get(e, "/api/flights/100?date=2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cargoWeight":25,"baggageWeight":10,"totalWeight":35}`, rec.Body.String())
}

func TestGetFlightDetailsNotFound(t *testing.T) {
	e := newEcho(service.NewSummaryService(testRepo(), nil))

	rec := get(e, "/api/flights/100?date=2024-01-02")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"flight not found"}`, rec.Body.String())
}

func TestGetFlightDetailsBadInput(t *testing.T) {
	e := newEcho(service.NewSummaryService(testRepo(), nil))

	for _, target := range []string{
		"/api/flights/abc?date=2024-01-01",
		"/api/flights/100",
		"/api/flights/100?date=01-01-2024",
		"/api/flights/100?date=2024-13-01",
	} {
		rec := get(e, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestGetAirportDetails(t *testing.T) {
	e := newEcho(service.NewSummaryService(testRepo(), nil))

	rec := get(e, "/api/flights/airport/jfk?date=2024-01-02")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"departingFlights":0,"arrivingFlights":1,"totalArrivingBaggage":7,"totalDepartingBaggage":0}`, rec.Body.String())

	upper := get(e, "/api/flights/airport/JFK?date=2024-01-02")
	assert.Equal(t, rec.Body.String(), upper.Body.String())

	rec = get(e, "/api/flights/airport/JFK?date=2024-01-01")
	assert.JSONEq(t, `{"departingFlights":1,"arrivingFlights":0,"totalArrivingBaggage":0,"totalDepartingBaggage":2}`, rec.Body.String())
}

func TestGetAirportDetailsUnknownAirport(t *testing.T) {
	e := newEcho(service.NewSummaryService(testRepo(), nil))

	rec := get(e, "/api/flights/airport/ZZZ?date=2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"departingFlights":0,"arrivingFlights":0,"totalArrivingBaggage":0,"totalDepartingBaggage":0}`, rec.Body.String())

	rec = get(e, "/api/flights/airport/ZZZ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingService struct{}

func (failingService) FlightDetails(context.Context, int, model.Date) (service.FlightDetails, error) {
	return service.FlightDetails{}, errors.New("unexpected")
}

func (failingService) AirportDetails(context.Context, string, model.Date) service.AirportDetails {
	return service.AirportDetails{}
}

func TestGetFlightDetailsInternalError(t *testing.T) {
	rec := get(newEcho(failingService{}), "/api/flights/100?date=2024-01-01")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health(testRepo()))

	rec := get(e, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","flights":2}`, rec.Body.String())
}

func TestNewFlightHandlerPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewFlightHandler(nil) })
}
