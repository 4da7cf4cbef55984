package types

import (
	"testing"
	"time"
)

func date(s string) *time.Time {
	d, err := time.Parse(DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestFinalizeDates_ReturnDate(t *testing.T) {
	ti := NewTripIntent("s1", "text", "CNY")
	ti.DepartDate = date("2025-12-10")
	ti.Days = 3
	ti.FinalizeDates()

	if ti.ReturnDate == nil {
		t.Fatal("return date should be derived")
	}
	if got := ti.ReturnDate.Format(DateOnly); got != "2025-12-12" {
		t.Errorf("expected return 2025-12-12, got %s", got)
	}
	if ti.Nights != 2 {
		t.Errorf("expected 2 nights for 3 days, got %d", ti.Nights)
	}
}

func TestFinalizeDates_SingleDay(t *testing.T) {
	ti := NewTripIntent("s1", "text", "CNY")
	ti.DepartDate = date("2025-12-10")
	ti.Days = 1
	ti.FinalizeDates()

	if ti.Nights != 1 {
		t.Errorf("nights floor is 1, got %d", ti.Nights)
	}
	if got := ti.ReturnDate.Format(DateOnly); got != "2025-12-10" {
		t.Errorf("expected same-day return, got %s", got)
	}
}

func TestFinalizeDates_ExtraNight(t *testing.T) {
	ti := NewTripIntent("s1", "text", "CNY")
	ti.DepartDate = date("2025-12-10")
	ti.Days = 3
	ti.Nights = 3
	ti.FinalizeDates()

	// nights == days books one night past the last trip day.
	if got := ti.ReturnDate.Format(DateOnly); got != "2025-12-13" {
		t.Errorf("expected return 2025-12-13, got %s", got)
	}
}

func TestFinalizeDates_KeepsExplicitReturn(t *testing.T) {
	ti := NewTripIntent("s1", "text", "CNY")
	ti.DepartDate = date("2025-12-10")
	ti.ReturnDate = date("2025-12-20")
	ti.Days = 3
	ti.FinalizeDates()

	if got := ti.ReturnDate.Format(DateOnly); got != "2025-12-20" {
		t.Errorf("explicit return date should be kept, got %s", got)
	}
}

func TestFinalizeDates_NoDate(t *testing.T) {
	ti := NewTripIntent("s1", "text", "CNY")
	ti.Days = 5
	ti.FinalizeDates()

	if ti.ReturnDate != nil {
		t.Error("return date must stay unset without a depart date")
	}
	if ti.Nights != 4 {
		t.Errorf("expected 4 nights, got %d", ti.Nights)
	}
}

func TestNewTripIntent_Defaults(t *testing.T) {
	ti := NewTripIntent("s1", "raw", "USD")
	if ti.Travelers != 1 {
		t.Errorf("expected 1 traveler by default, got %d", ti.Travelers)
	}
	if ti.Currency != "USD" {
		t.Errorf("expected USD, got %s", ti.Currency)
	}
}

func TestDomainError(t *testing.T) {
	err := NewDomainError(CodeFlightAPIFail, "Missing destination")
	if err.Error() != "FLIGHT_API_FAIL: Missing destination" {
		t.Errorf("unexpected error string: %s", err.Error())
	}

	err = NewDomainErrorf(CodeModelHTTPError, "Provider failed", "%d", 502)
	if err.Detail != "502" {
		t.Errorf("expected detail 502, got %s", err.Detail)
	}
	if err.Error() != "MODEL_HTTP_ERROR: Provider failed - 502" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
}
