// Package search provides the mocked flight, hotel, and attraction lookup
// providers. Each lookup is read-only over the finalized intent; the three
// have no data dependency on each other and may run concurrently.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/af-corp/atlas-planner/internal/types"
)

const (
	defaultMaxResults = 5
	sourceMock        = "mock"
)

// FlightScore combines price, duration, and stop count into a single
// figure of merit. Higher is better. Results are emitted in generation
// order; callers needing a ranked list sort by this score themselves.
func FlightScore(price float64, durationMinutes, stops int) float64 {
	pNorm := 1 / (price + 1)
	dNorm := 1 / (float64(durationMinutes) + 1)
	sNorm := 1 / (float64(stops) + 1)
	return 0.5*pNorm + 0.3*dNorm + 0.2*sNorm
}

// FlightProvider generates mock flight options for an intent.
type FlightProvider struct {
	defaultOrigin string
	maxResults    int
}

func NewFlightProvider(defaultOrigin string) *FlightProvider {
	return &FlightProvider{defaultOrigin: defaultOrigin, maxResults: defaultMaxResults}
}

// Search requires destination and depart date; post-finalization intents
// always have both.
func (p *FlightProvider) Search(ctx context.Context, ti types.TripIntent) ([]types.FlightOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ti.Destination == "" || ti.DepartDate == nil {
		return nil, types.NewDomainError(types.CodeFlightAPIFail, "Missing destination or depart_date")
	}
	origin := ti.Origin
	if origin == "" {
		origin = p.defaultOrigin
	}

	base := time.Date(ti.DepartDate.Year(), ti.DepartDate.Month(), ti.DepartDate.Day(), 0, 0, 0, 0, time.UTC)
	flights := make([]types.FlightOption, 0, p.maxResults)
	for i := 0; i < p.maxResults; i++ {
		depart := base.Add(time.Duration(8+i) * time.Hour)
		arrive := depart.Add(time.Duration(2+i) * time.Hour)
		price := 3000 + float64(i)*200
		duration := int(arrive.Sub(depart).Minutes())
		stops := 0
		if i >= 2 {
			stops = 1
		}
		flights = append(flights, types.FlightOption{
			ID:              fmt.Sprintf("FL%d", i),
			Airline:         "MockAir",
			FlightNumber:    fmt.Sprintf("MA%03d", i),
			DepartAirport:   origin,
			ArriveAirport:   ti.Destination,
			DepartTime:      depart,
			ArriveTime:      arrive,
			DurationMinutes: duration,
			Price:           price,
			Currency:        ti.Currency,
			CabinClass:      "Economy",
			Stops:           stops,
			Source:          sourceMock,
			Score:           FlightScore(price, duration, stops),
		})
	}
	return flights, nil
}
