// Package service assembles flight and airport summaries from the dataset
// lookups and the weight aggregator.
package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
	"github.com/iliyamo/flight-cargo-summary/internal/queue"
	"github.com/iliyamo/flight-cargo-summary/internal/repository"
	"github.com/iliyamo/flight-cargo-summary/internal/weight"
)

const (
	publishTimeout = 5 * time.Second
	maxInFlight    = 32 // concurrent publishes; further events are dropped
)

// FlightDetails are the weight figures of one flight, in kilograms except
// for BaggageWeight, which adds raw baggage weights as recorded.
type FlightDetails struct {
	CargoWeight   int
	BaggageWeight int
	TotalWeight   int
}

// AirportDetails are the traffic figures of one airport on one day.
type AirportDetails struct {
	DepartingFlights      int
	ArrivingFlights       int
	TotalArrivingBaggage  int
	TotalDepartingBaggage int
}

// Publisher receives an event for every summary served.  *queue.Publisher
// satisfies it.
type Publisher interface {
	PublishSummaryServed(ctx context.Context, event queue.SummaryServedEvent) error
}

// SummaryService answers summary queries over a FlightRepo.
type SummaryService struct {
	flights   *repository.FlightRepo
	publisher Publisher // nil disables events
	inFlight  chan struct{}
	now       func() time.Time
}

// NewSummaryService builds a SummaryService.  pub may be nil.
func NewSummaryService(flights *repository.FlightRepo, pub Publisher) *SummaryService {
	return &SummaryService{
		flights:   flights,
		publisher: pub,
		inFlight:  make(chan struct{}, maxInFlight),
		now:       time.Now,
	}
}

// FlightDetails returns the weight summary of the flight with number that
// departs on date, or repository.ErrFlightNotFound.
func (s *SummaryService) FlightDetails(ctx context.Context, number int, date model.Date) (FlightDetails, error) {
	f, ok := s.flights.FindByNumberAndDate(number, date)
	if !ok {
		return FlightDetails{}, repository.ErrFlightNotFound
	}

	out := FlightDetails{
		CargoWeight:   weight.FlightCargoWeight(f),
		BaggageWeight: weight.BaggageWeight(f),
		TotalWeight:   weight.TotalWeight(f),
	}

	s.publish(ctx, queue.SummaryServedEvent{
		Kind:         queue.KindFlight,
		FlightNumber: number,
		Date:         date.String(),
		Figures: map[string]int{
			"cargoWeight":   out.CargoWeight,
			"baggageWeight": out.BaggageWeight,
			"totalWeight":   out.TotalWeight,
		},
	})
	return out, nil
}

// AirportDetails returns the traffic summary of airport iata on date.  An
// airport without flights yields all zeros.
func (s *SummaryService) AirportDetails(ctx context.Context, iata string, date model.Date) AirportDetails {
	out := AirportDetails{
		DepartingFlights:      s.flights.CountDeparting(iata, date),
		ArrivingFlights:       s.flights.CountArriving(iata, date),
		TotalArrivingBaggage:  s.flights.TotalArrivingBaggage(iata, date),
		TotalDepartingBaggage: s.flights.TotalDepartingBaggage(iata, date),
	}

	s.publish(ctx, queue.SummaryServedEvent{
		Kind:     queue.KindAirport,
		IATACode: iata,
		Date:     date.String(),
		Figures: map[string]int{
			"departingFlights":      out.DepartingFlights,
			"arrivingFlights":       out.ArrivingFlights,
			"totalArrivingBaggage":  out.TotalArrivingBaggage,
			"totalDepartingBaggage": out.TotalDepartingBaggage,
		},
	})
	return out
}

// publish hands ev to the publisher in the background.  The request may
// finish first, so the publish gets its own deadline.  At most maxInFlight
// publishes run at once; a slow broker costs events, not goroutines.
func (s *SummaryService) publish(ctx context.Context, ev queue.SummaryServedEvent) {
	if s.publisher == nil {
		return
	}
	ev.ServedAt = s.now().UTC().Format(time.RFC3339)
	select {
	case s.inFlight <- struct{}{}:
	default:
		log.Printf("summary: %d publishes in flight, dropping %s event", cap(s.inFlight), ev.Kind)
		return
	}
	go func() {
		defer func() { <-s.inFlight }()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishSummaryServed(pctx, ev); err != nil {
			log.Printf("summary: publish %s event failed: %v", ev.Kind, err)
		}
	}()
}
