// Package budget derives and validates the trip budget split.
package budget

import (
	"math"

	"github.com/af-corp/atlas-planner/internal/types"
)

// Fixed category split of the total budget.
const (
	ratioTransportation = 0.30
	ratioAccommodation  = 0.25
	ratioFood           = 0.20
	ratioAttractions    = 0.15
	ratioOther          = 0.10
)

// Daily realism thresholds in currency units per day.
const (
	dailyLowThreshold  = 150.0
	dailyHighThreshold = 8000.0
)

// estimateBuffer pads the naive cheapest-flight-plus-hotel estimate.
const estimateBuffer = 1.4

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// deriveDays prefers the explicit day count, falling back to the first
// hotel's nights plus the arrival day.
func deriveDays(ti types.TripIntent, hotels []types.HotelOption) int {
	if ti.Days > 0 {
		return ti.Days
	}
	if len(hotels) > 0 {
		return hotels[0].Nights + 1
	}
	return 0
}

// Allocate splits the intent's budget across fixed categories, estimating a
// total first when none was given. The estimated total is written back onto
// the intent. Warnings accumulate; none is fatal.
func Allocate(ti *types.TripIntent, flights []types.FlightOption, hotels []types.HotelOption) (types.BudgetAllocation, error) {
	if len(flights) == 0 || len(hotels) == 0 {
		return types.BudgetAllocation{}, types.NewDomainError(types.CodeBudgetAllocFail, "Missing flights/hotels")
	}

	minFlight := flights[0].Price
	for _, f := range flights[1:] {
		if f.Price < minFlight {
			minFlight = f.Price
		}
	}
	minHotel := hotels[0].TotalPrice
	for _, h := range hotels[1:] {
		if h.TotalPrice < minHotel {
			minHotel = h.TotalPrice
		}
	}

	var warnings []string
	if ti.BudgetTotal == nil {
		est := round2((minFlight + minHotel) * float64(ti.Travelers) * estimateBuffer)
		ti.BudgetTotal = &est
		warnings = append(warnings, types.WarnBudgetEstimated)
	}
	total := *ti.BudgetTotal

	alloc := types.BudgetAllocation{
		Total:          total,
		Currency:       ti.Currency,
		Transportation: round2(total * ratioTransportation),
		Accommodation:  round2(total * ratioAccommodation),
		Food:           round2(total * ratioFood),
		Attractions:    round2(total * ratioAttractions),
		Other:          round2(total * ratioOther),
	}

	if alloc.Transportation < minFlight {
		warnings = append(warnings, types.WarnTransportLow)
	}
	if days := deriveDays(*ti, hotels); days > 0 {
		daily := total / float64(days)
		switch {
		case daily < dailyLowThreshold:
			warnings = append(warnings, types.WarnDailyBudgetLow)
		case daily > dailyHighThreshold:
			warnings = append(warnings, types.WarnDailyBudgetHigh)
		}
	}

	alloc.Warnings = warnings
	return alloc, nil
}
