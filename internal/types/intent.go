package types

import "time"

// DateOnly is the wire format for calendar dates.
const DateOnly = "2006-01-02"

// TripIntent is the evolving, partially-filled representation of a planning
// request. It is mutated only by the intent parser (initial extraction) and
// the clarification machine (answer application); downstream stages treat it
// as read-only.
type TripIntent struct {
	SessionID   string     `json:"session_id"`
	RawText     string     `json:"raw_text"`
	Origin      string     `json:"origin,omitempty"`
	Destination string     `json:"destination,omitempty"`
	DepartDate  *time.Time `json:"depart_date,omitempty"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Days        int        `json:"days,omitempty"`
	Nights      int        `json:"nights,omitempty"`
	BudgetTotal *float64   `json:"budget_total,omitempty"`
	Travelers   int        `json:"travelers"`
	Preferences []string   `json:"preferences,omitempty"`
	Currency    string     `json:"currency"`
}

// NewTripIntent returns an intent with the defaults applied (one traveler,
// given currency).
func NewTripIntent(sessionID, rawText, currency string) TripIntent {
	return TripIntent{
		SessionID: sessionID,
		RawText:   rawText,
		Travelers: 1,
		Currency:  currency,
	}
}

// FinalizeDates derives nights and the return date from the fields present.
// Nights defaults to max(days-1, 1). The return date is depart + (days-1)
// unless nights == days (an extra night booked past the last trip day), in
// which case it is depart + days. Already-set return dates are kept.
func (ti *TripIntent) FinalizeDates() {
	if ti.DepartDate != nil && ti.Days > 0 && ti.ReturnDate == nil {
		ret := ti.DepartDate.AddDate(0, 0, ti.Days-1)
		ti.ReturnDate = &ret
	}
	if ti.DepartDate != nil && ti.Days > 0 && ti.Nights == ti.Days {
		ret := ti.DepartDate.AddDate(0, 0, ti.Days)
		ti.ReturnDate = &ret
	}
	if ti.Nights == 0 && ti.Days > 0 {
		ti.Nights = ti.Days - 1
		if ti.Nights < 1 {
			ti.Nights = 1
		}
	}
}

// Question is a single clarification prompt issued for a missing field.
type Question struct {
	ID       string `json:"id"`
	Field    string `json:"field"`
	Prompt   string `json:"prompt"`
	Required bool   `json:"required"`
}

// Answer is one clarify-round reply supplied by the caller.
type Answer struct {
	QuestionID string `json:"question_id,omitempty"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}
