package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
	"github.com/iliyamo/flight-cargo-summary/internal/queue"
	"github.com/iliyamo/flight-cargo-summary/internal/repository"
)

type recordingPublisher struct {
	events chan queue.SummaryServedEvent
	err    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan queue.SummaryServedEvent, 4)}
}

func (p *recordingPublisher) PublishSummaryServed(_ context.Context, ev queue.SummaryServedEvent) error {
	p.events <- ev
	return p.err
}

func (p *recordingPublisher) next(t *testing.T) queue.SummaryServedEvent {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return queue.SummaryServedEvent{}
	}
}

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newRepo() *repository.FlightRepo {
	return repository.NewFlightRepo([]model.Flight{
		{
			FlightID: 1, FlightNumber: 100,
			DepartureAirportIATACode: "JFK", ArrivalAirportIATACode: "LAX",
			DepartureDate: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC),
			Cargo: []model.Cargo{{
				Baggage: []model.Baggage{{Pieces: 2, Weight: 10, WeightUnit: "kg"}},
				Cargo:   []model.CargoItem{{Pieces: 1, Weight: 10, WeightUnit: "lb"}},
			}},
		},
		{
			FlightID: 2, FlightNumber: 200,
			DepartureAirportIATACode: "LAX", ArrivalAirportIATACode: "JFK",
			DepartureDate: time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC),
		},
	})
}

func TestFlightDetails(t *testing.T) {
	svc := NewSummaryService(newRepo(), nil)

	got, err := svc.FlightDetails(context.Background(), 100, date(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, FlightDetails{CargoWeight: 25, BaggageWeight: 10, TotalWeight: 35}, got)

	got, err = svc.FlightDetails(context.Background(), 200, date(t, "2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, FlightDetails{}, got)
}

func TestFlightDetailsNotFound(t *testing.T) {
	svc := NewSummaryService(newRepo(), nil)

	_, err := svc.FlightDetails(context.Background(), 100, date(t, "2024-01-02"))
	assert.True(t, errors.Is(err, repository.ErrFlightNotFound))
}

func TestAirportDetails(t *testing.T) {
	svc := NewSummaryService(newRepo(), nil)

	got := svc.AirportDetails(context.Background(), "jfk", date(t, "2024-01-01"))
	assert.Equal(t, AirportDetails{DepartingFlights: 1, TotalDepartingBaggage: 2}, got)

	got = svc.AirportDetails(context.Background(), "JFK", date(t, "2024-01-02"))
	assert.Equal(t, AirportDetails{ArrivingFlights: 1}, got)

	got = svc.AirportDetails(context.Background(), "ZZZ", date(t, "2024-01-01"))
	assert.Equal(t, AirportDetails{}, got)
}

func TestPublishesEvents(t *testing.T) {
	pub := newRecordingPublisher()
	svc := NewSummaryService(newRepo(), pub)
	svc.now = func() time.Time { return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC) }

	_, err := svc.FlightDetails(context.Background(), 100, date(t, "2024-01-01"))
	require.NoError(t, err)
	ev := pub.next(t)
	assert.Equal(t, queue.KindFlight, ev.Kind)
	assert.Equal(t, 100, ev.FlightNumber)
	assert.Equal(t, "2024-01-01", ev.Date)
	assert.Equal(t, "2024-01-01T12:00:00Z", ev.ServedAt)
	assert.Equal(t, 35, ev.Figures["totalWeight"])

	svc.AirportDetails(context.Background(), "LAX", date(t, "2024-01-01"))
	ev = pub.next(t)
	assert.Equal(t, queue.KindAirport, ev.Kind)
	assert.Equal(t, "LAX", ev.IATACode)
	assert.Equal(t, 1, ev.Figures["arrivingFlights"])
}

func TestPublishFailureDoesNotAffectResult(t *testing.T) {
	pub := newRecordingPublisher()
	pub.err = errors.New("broker down")
	svc := NewSummaryService(newRepo(), pub)

	got, err := svc.FlightDetails(context.Background(), 100, date(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 35, got.TotalWeight)
	pub.next(t)

	// not-found does not publish
	_, err = svc.FlightDetails(context.Background(), 999, date(t, "2024-01-01"))
	require.Error(t, err)
	select {
	case ev := <-pub.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) PublishSummaryServed(ctx context.Context, _ queue.SummaryServedEvent) error {
	p.started <- struct{}{}
	<-p.release
	return nil
}

func TestPublishInFlightIsBounded(t *testing.T) {
	pub := &blockingPublisher{started: make(chan struct{}, 2*maxInFlight), release: make(chan struct{})}
	svc := NewSummaryService(newRepo(), pub)

	for i := 0; i < maxInFlight+10; i++ {
		_, err := svc.FlightDetails(context.Background(), 100, date(t, "2024-01-01"))
		require.NoError(t, err)
	}
	for i := 0; i < maxInFlight; i++ {
		select {
		case <-pub.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d publishes started", i)
		}
	}
	select {
	case <-pub.started:
		t.Fatal("publish started beyond the in-flight limit")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Len(t, svc.inFlight, maxInFlight)

	close(pub.release)
	assert.Eventually(t, func() bool { return len(svc.inFlight) == 0 }, 2*time.Second, 10*time.Millisecond)
}
