// Package handler exposes the HTTP handlers of the flight summary API.
// Handlers parse and validate path and query parameters, call the summary
// service and map its results to JSON.  Errors are reported as
// {"error": "..."} bodies.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
	"github.com/iliyamo/flight-cargo-summary/internal/repository"
	"github.com/iliyamo/flight-cargo-summary/internal/service"
)

// summaryService is implemented by *service.SummaryService.
type summaryService interface {
	FlightDetails(ctx context.Context, number int, date model.Date) (service.FlightDetails, error)
	AirportDetails(ctx context.Context, iata string, date model.Date) service.AirportDetails
}

// FlightHandler serves flight and airport summaries.
type FlightHandler struct {
	summary summaryService
}

// NewFlightHandler constructs a FlightHandler and panics if s is nil.
func NewFlightHandler(s summaryService) *FlightHandler {
	if s == nil {
		panic("nil summary service passed to NewFlightHandler")
	}
	return &FlightHandler{summary: s}
}

// FlightDetailsResponse is the JSON body of GET /api/flights/:flightNumber.
type FlightDetailsResponse struct {
	CargoWeight   int `json:"cargoWeight"`
	BaggageWeight int `json:"baggageWeight"`
	TotalWeight   int `json:"totalWeight"`
}

// AirportDetailsResponse is the JSON body of GET /api/flights/airport/:iataCode.
type AirportDetailsResponse struct {
	DepartingFlights      int `json:"departingFlights"`
	ArrivingFlights       int `json:"arrivingFlights"`
	TotalArrivingBaggage  int `json:"totalArrivingBaggage"`
	TotalDepartingBaggage int `json:"totalDepartingBaggage"`
}

// GetFlightDetails returns the cargo, baggage and total weight of the flight
// with the given number departing on ?date=YYYY-MM-DD.
func (h *FlightHandler) GetFlightDetails(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("flightNumber"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight number"})
	}
	date, err := queryDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	details, err := h.summary.FlightDetails(c.Request().Context(), number, date)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, FlightDetailsResponse{
		CargoWeight:   details.CargoWeight,
		BaggageWeight: details.BaggageWeight,
		TotalWeight:   details.TotalWeight,
	})
}

// GetAirportDetails returns departure and arrival counts and baggage pieces
// for an airport on ?date=YYYY-MM-DD.  Unknown airports yield zeros.
func (h *FlightHandler) GetAirportDetails(c echo.Context) error {
	iata := strings.TrimSpace(c.Param("iataCode"))
	if iata == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing airport code"})
	}
	date, err := queryDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	d := h.summary.AirportDetails(c.Request().Context(), iata, date)
	return c.JSON(http.StatusOK, AirportDetailsResponse{
		DepartingFlights:      d.DepartingFlights,
		ArrivingFlights:       d.ArrivingFlights,
		TotalArrivingBaggage:  d.TotalArrivingBaggage,
		TotalDepartingBaggage: d.TotalDepartingBaggage,
	})
}

var (
	errMissingDate = errors.New("date query parameter is required (YYYY-MM-DD)")
	errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

func queryDate(c echo.Context) (model.Date, error) {
	raw := strings.TrimSpace(c.QueryParam("date"))
	if raw == "" {
		return model.Date{}, errMissingDate
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, errInvalidDate
	}
	return d, nil
}
