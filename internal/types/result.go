package types

import "time"

// SchemaVersion tags the PlanningResult wire shape.
const SchemaVersion = "1.0"

// FlightOption is a single flight candidate. Options are returned in
// generation order; callers needing a ranked list must sort by Score.
type FlightOption struct {
	ID              string    `json:"id"`
	Airline         string    `json:"airline"`
	FlightNumber    string    `json:"flight_number"`
	DepartAirport   string    `json:"depart_airport"`
	ArriveAirport   string    `json:"arrive_airport"`
	DepartTime      time.Time `json:"depart_time"`
	ArriveTime      time.Time `json:"arrive_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	CabinClass      string    `json:"cabin_class"`
	Stops           int       `json:"stops"`
	Source          string    `json:"source"`
	Score           float64   `json:"score"`
}

// HotelOption is a single hotel candidate.
type HotelOption struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	LocationText     string  `json:"location_text"`
	PricePerNight    float64 `json:"price_per_night"`
	Nights           int     `json:"nights"`
	TotalPrice       float64 `json:"total_price"`
	Currency         string  `json:"currency"`
	Rating           float64 `json:"rating"`
	Source           string  `json:"source"`
	DistanceCenterKm float64 `json:"distance_center_km,omitempty"`
	Score            float64 `json:"score"`
}

// DayPlan is one day of the generated itinerary.
type DayPlan struct {
	DayIndex  int      `json:"day_index"`
	Date      string   `json:"date,omitempty"`
	MainSpots []string `json:"main_spots"`
	Meals     []string `json:"meals"`
	Notes     string   `json:"notes,omitempty"`
}

// Itinerary is the narrative day-by-day plan produced by synthesis.
type Itinerary struct {
	Days    []DayPlan `json:"days"`
	Summary string    `json:"summary"`
}

// BudgetAllocation splits the trip budget into fixed categories. The category
// amounts always sum to the total within rounding tolerance.
type BudgetAllocation struct {
	Total          float64  `json:"total"`
	Currency       string   `json:"currency"`
	Transportation float64  `json:"transportation"`
	Accommodation  float64  `json:"accommodation"`
	Food           float64  `json:"food"`
	Attractions    float64  `json:"attractions"`
	Other          float64  `json:"other"`
	Warnings       []string `json:"warnings,omitempty"`
}

// PlanningResult is the terminal artifact of a planning request. It is
// immutable once constructed and cached by a content-derived key.
type PlanningResult struct {
	SessionID     string           `json:"session_id"`
	SchemaVersion string           `json:"schema_version"`
	Intent        TripIntent       `json:"intent"`
	Flights       []FlightOption   `json:"flights"`
	Hotels        []HotelOption    `json:"hotels"`
	Itinerary     Itinerary        `json:"itinerary"`
	Budget        BudgetAllocation `json:"budget"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Warnings      []string         `json:"warnings"`
}
