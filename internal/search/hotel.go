package search

import (
	"context"
	"fmt"

	"github.com/af-corp/atlas-planner/internal/types"
)

// HotelScore weighs guest rating against nightly price. Higher is better.
func HotelScore(pricePerNight, rating float64) float64 {
	pNorm := 1 / (pricePerNight + 1)
	rNorm := rating / 5.0
	return 0.6*rNorm + 0.4*pNorm
}

// HotelProvider generates mock hotel options for an intent.
type HotelProvider struct {
	maxResults int
}

func NewHotelProvider() *HotelProvider {
	return &HotelProvider{maxResults: defaultMaxResults}
}

// Search requires destination and days.
func (p *HotelProvider) Search(ctx context.Context, ti types.TripIntent) ([]types.HotelOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ti.Destination == "" || ti.Days == 0 {
		return nil, types.NewDomainError(types.CodeHotelAPIFail, "Missing destination or days")
	}
	nights := ti.Nights
	if nights == 0 {
		nights = ti.Days - 1
	}

	hotels := make([]types.HotelOption, 0, p.maxResults)
	for i := 0; i < p.maxResults; i++ {
		price := 400 + float64(i)*50
		rating := 4.0 - float64(i)*0.1
		hotels = append(hotels, types.HotelOption{
			ID:               fmt.Sprintf("HT%d", i),
			Name:             fmt.Sprintf("Hotel%d", i),
			LocationText:     fmt.Sprintf("Center %d", i),
			PricePerNight:    price,
			Nights:           nights,
			TotalPrice:       price * float64(nights),
			Currency:         ti.Currency,
			Rating:           rating,
			Source:           sourceMock,
			DistanceCenterKm: 0.5 + float64(i)*0.3,
			Score:            HotelScore(price, rating),
		})
	}
	return hotels, nil
}
