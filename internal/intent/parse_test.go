package intent

import (
	"fmt"
	"testing"
	"time"

	"github.com/af-corp/atlas-planner/internal/types"
)

func TestParse_FullRequest(t *testing.T) {
	ti := Parse("from Beijing to Tokyo 2025-12-10 5 days budget 8000", "s1", "CNY")

	if ti.Origin != "Beijing" {
		t.Errorf("expected origin Beijing, got %q", ti.Origin)
	}
	if ti.Destination != "Tokyo" {
		t.Errorf("expected destination Tokyo, got %q", ti.Destination)
	}
	if ti.Days != 5 {
		t.Errorf("expected 5 days, got %d", ti.Days)
	}
	if ti.BudgetTotal == nil || *ti.BudgetTotal != 8000 {
		t.Errorf("expected budget 8000, got %v", ti.BudgetTotal)
	}
	if ti.DepartDate == nil || ti.DepartDate.Format(types.DateOnly) != "2025-12-10" {
		t.Errorf("expected depart 2025-12-10, got %v", ti.DepartDate)
	}
	if ti.ReturnDate == nil || ti.ReturnDate.Format(types.DateOnly) != "2025-12-14" {
		t.Errorf("expected return 2025-12-14, got %v", ti.ReturnDate)
	}
	if ti.Nights != 4 {
		t.Errorf("expected 4 nights, got %d", ti.Nights)
	}
}

func TestParse_PartialRequest(t *testing.T) {
	ti := Parse("budget 2000, 3 days", "s1", "CNY")

	if ti.Origin != "" || ti.Destination != "" {
		t.Errorf("no places should be extracted, got origin=%q destination=%q", ti.Origin, ti.Destination)
	}
	if ti.Days != 3 {
		t.Errorf("expected 3 days, got %d", ti.Days)
	}
	if ti.BudgetTotal == nil || *ti.BudgetTotal != 2000 {
		t.Errorf("expected budget 2000, got %v", ti.BudgetTotal)
	}
	if ti.DepartDate != nil {
		t.Errorf("no date should be extracted, got %v", ti.DepartDate)
	}
}

func TestParse_NeverFails(t *testing.T) {
	for _, text := range []string{"", "!!!", "i want to travel somewhere nice", "0 days budget"} {
		ti := Parse(text, "s1", "CNY")
		if ti.SessionID != "s1" {
			t.Errorf("Parse(%q) lost session id", text)
		}
	}
}

func TestParse_LowercaseToIsNotDestination(t *testing.T) {
	ti := Parse("i want to go somewhere", "s1", "CNY")
	if ti.Destination != "" {
		t.Errorf("lowercase words after 'to' are not places, got %q", ti.Destination)
	}
}

func TestParse_SingleDigitDate(t *testing.T) {
	ti := Parse("to Tokyo 2025-3-5", "s1", "CNY")
	if ti.DepartDate == nil || ti.DepartDate.Format(types.DateOnly) != "2025-03-05" {
		t.Errorf("expected normalized 2025-03-05, got %v", ti.DepartDate)
	}
}

func TestParse_BareMonth(t *testing.T) {
	ti := Parse("to Tokyo in month 12", "s1", "CNY")
	if ti.DepartDate == nil {
		t.Fatal("bare month should set a depart date")
	}
	want := fmt.Sprintf("%d-12-01", time.Now().UTC().Year())
	if got := ti.DepartDate.Format(types.DateOnly); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParse_CJKMonth(t *testing.T) {
	ti := Parse("to Tokyo 12月", "s1", "CNY")
	if ti.DepartDate == nil {
		t.Fatal("CJK month marker should set a depart date")
	}
	if ti.DepartDate.Month() != time.December {
		t.Errorf("expected December, got %v", ti.DepartDate.Month())
	}
}

func TestParse_DepartingFrom(t *testing.T) {
	ti := Parse("departing from New York to Tokyo", "s1", "USD")
	if ti.Origin != "New York" {
		t.Errorf("expected origin 'New York', got %q", ti.Origin)
	}
	if ti.Destination != "Tokyo" {
		t.Errorf("expected destination Tokyo, got %q", ti.Destination)
	}
}

func TestFindGaps_Order(t *testing.T) {
	ti := types.NewTripIntent("s1", "", "CNY")
	gaps := FindGaps(ti)

	want := []string{"origin", "destination", "depart_date", "days", "budget_total"}
	if len(gaps) != len(want) {
		t.Fatalf("expected %d gaps, got %d: %v", len(want), len(gaps), gaps)
	}
	for i := range want {
		if gaps[i] != want[i] {
			t.Errorf("gap[%d] = %q, want %q", i, gaps[i], want[i])
		}
	}
}

func TestFindGaps_PresenceOnly(t *testing.T) {
	ti := Parse("from Beijing to Tokyo 2025-12-10 3 days budget 2000", "s1", "CNY")
	if gaps := FindGaps(ti); len(gaps) != 0 {
		t.Errorf("complete intent should have no gaps, got %v", gaps)
	}
}

func TestQuestionsFor(t *testing.T) {
	qs := QuestionsFor([]string{"origin", "budget_total"})
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].ID != "q_origin" || qs[0].Field != "origin" {
		t.Errorf("unexpected first question: %+v", qs[0])
	}
	if !qs[1].Required {
		t.Error("questions are required")
	}
	if qs[1].Prompt == "" {
		t.Error("question prompt must be set")
	}
}

func TestApplyAnswers_MergesAndRefinalizes(t *testing.T) {
	ti := Parse("budget 2000, 3 days", "s1", "CNY")
	ti = ApplyAnswers(ti, []types.Answer{
		{Field: "origin", Value: "Beijing"},
		{Field: "destination", Value: "Tokyo"},
		{Field: "depart_date", Value: "2025-12-10"},
	})

	if ti.Origin != "Beijing" || ti.Destination != "Tokyo" {
		t.Errorf("answers not merged: origin=%q destination=%q", ti.Origin, ti.Destination)
	}
	if ti.ReturnDate == nil || ti.ReturnDate.Format(types.DateOnly) != "2025-12-12" {
		t.Errorf("dates should be re-finalized after merge, got %v", ti.ReturnDate)
	}
	if gaps := FindGaps(ti); len(gaps) != 0 {
		t.Errorf("merged fields must not reappear as gaps: %v", gaps)
	}
}

func TestApplyAnswers_IgnoresEmptyAndMalformed(t *testing.T) {
	ti := types.NewTripIntent("s1", "", "CNY")
	ti.Origin = "Beijing"
	ti = ApplyAnswers(ti, []types.Answer{
		{Field: "origin", Value: "   "},
		{Field: "days", Value: "many"},
		{Field: "depart_date", Value: "not-a-date"},
	})

	if ti.Origin != "Beijing" {
		t.Errorf("blank answer must not clear a field, got %q", ti.Origin)
	}
	if ti.Days != 0 {
		t.Errorf("malformed days must be ignored, got %d", ti.Days)
	}
	if ti.DepartDate != nil {
		t.Errorf("malformed date must be ignored, got %v", ti.DepartDate)
	}
}

func TestApplyAnswers_BudgetUnsure(t *testing.T) {
	ti := types.NewTripIntent("s1", "", "CNY")
	ti = ApplyAnswers(ti, []types.Answer{
		{Field: "budget_total", Value: "Unsure"},
	})
	if ti.BudgetTotal != nil {
		t.Errorf("'unsure' must leave budget absent, got %v", *ti.BudgetTotal)
	}
}
