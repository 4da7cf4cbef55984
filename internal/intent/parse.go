// Package intent extracts a partial TripIntent from free text and computes
// the required-field gaps that drive the clarification loop.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/af-corp/atlas-planner/internal/types"
)

// Extraction markers. First match wins per field; absent fields stay zero.
var (
	originPattern      = regexp.MustCompile(`\b(?i:departing\s+from|from)\s+([A-Z][A-Za-z\-]*(?:\s+[A-Z][A-Za-z\-]*)*)`)
	destinationPattern = regexp.MustCompile(`\b(?i:arriving\s+at|to)\s+([A-Z][A-Za-z\-]*(?:\s+[A-Z][A-Za-z\-]*)*)`)
	daysPattern        = regexp.MustCompile(`(?i)(\d+)\s*days?\b`)
	budgetPattern      = regexp.MustCompile(`(?i)budget\s*(?:of|is|:)?\s*(\d+(?:\.\d+)?)`)
	datePattern        = regexp.MustCompile(`(20\d{2}-\d{1,2}-\d{1,2})`)
	monthPattern       = regexp.MustCompile(`(?i)(?:in\s+)?month\s+(\d{1,2})|(\d{1,2})月`)
)

// BudgetUnsureSentinel marks a clarify answer meaning "I don't know my
// budget"; the field is treated as still absent. Only the budget question
// prompt offers the sentinel.
const BudgetUnsureSentinel = "unsure"

// RequiredFields lists the fields that must be present before orchestration,
// in gap-detection order.
var RequiredFields = []string{"origin", "destination", "depart_date", "days", "budget_total"}

// Parse extracts whatever structured fields the raw text contains. It never
// fails; unmatched fields are simply left unset.
func Parse(rawText, sessionID, currency string) types.TripIntent {
	ti := types.NewTripIntent(sessionID, rawText, currency)

	if m := originPattern.FindStringSubmatch(rawText); m != nil {
		ti.Origin = strings.TrimSpace(m[1])
	}
	if m := destinationPattern.FindStringSubmatch(rawText); m != nil {
		ti.Destination = strings.TrimSpace(m[1])
	}
	if m := daysPattern.FindStringSubmatch(rawText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			ti.Days = n
		}
	}
	if m := budgetPattern.FindStringSubmatch(rawText); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			ti.BudgetTotal = &v
		}
	}
	if m := datePattern.FindStringSubmatch(rawText); m != nil {
		if d, err := time.Parse(types.DateOnly, normalizeDate(m[1])); err == nil {
			ti.DepartDate = &d
		}
	} else if m := monthPattern.FindStringSubmatch(rawText); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if month, err := strconv.Atoi(raw); err == nil && month >= 1 && month <= 12 {
			// Bare month with no year: day 1 of that month in the current
			// year. May produce a past date if the month already elapsed.
			d := time.Date(time.Now().UTC().Year(), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			ti.DepartDate = &d
		}
	}

	ti.FinalizeDates()
	return ti
}

// normalizeDate pads single-digit month/day so time.Parse accepts the literal.
func normalizeDate(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	if len(parts[1]) == 1 {
		parts[1] = "0" + parts[1]
	}
	if len(parts[2]) == 1 {
		parts[2] = "0" + parts[2]
	}
	return strings.Join(parts, "-")
}

// FindGaps returns the required fields still missing from the intent, in
// RequiredFields order. Presence is a pure null-check; no semantic
// validation happens here.
func FindGaps(ti types.TripIntent) []string {
	var gaps []string
	for _, f := range RequiredFields {
		switch f {
		case "origin":
			if ti.Origin == "" {
				gaps = append(gaps, f)
			}
		case "destination":
			if ti.Destination == "" {
				gaps = append(gaps, f)
			}
		case "depart_date":
			if ti.DepartDate == nil {
				gaps = append(gaps, f)
			}
		case "days":
			if ti.Days == 0 {
				gaps = append(gaps, f)
			}
		case "budget_total":
			if ti.BudgetTotal == nil {
				gaps = append(gaps, f)
			}
		}
	}
	return gaps
}

var questionPrompts = map[string]string{
	"origin":       "Which city are you departing from?",
	"destination":  "Which city or country would you like to visit?",
	"depart_date":  "What is your exact departure date (for example 2025-12-10)?",
	"days":         "Roughly how many days will you travel?",
	"budget_total": "What is your total budget? Reply 'unsure' if you don't know yet.",
}

// QuestionsFor produces one deterministic question per remaining gap, in
// gap-detection order.
func QuestionsFor(gaps []string) []types.Question {
	qs := make([]types.Question, 0, len(gaps))
	for _, f := range gaps {
		qs = append(qs, types.Question{
			ID:       "q_" + f,
			Field:    f,
			Prompt:   questionPrompts[f],
			Required: true,
		})
	}
	return qs
}

// ApplyAnswers merges a clarify answer batch into the intent. Only fields
// with explicitly supplied parseable values are overwritten; empty or
// malformed values are ignored, and the budget "unsure" sentinel leaves the
// field absent. Derived dates are re-finalized after the merge.
func ApplyAnswers(ti types.TripIntent, answers []types.Answer) types.TripIntent {
	for _, a := range answers {
		value := strings.TrimSpace(a.Value)
		if value == "" {
			continue
		}
		switch a.Field {
		case "origin":
			ti.Origin = value
		case "destination":
			ti.Destination = value
		case "depart_date":
			if d, err := time.Parse(types.DateOnly, value); err == nil {
				ti.DepartDate = &d
			}
		case "days":
			if n, err := strconv.Atoi(value); err == nil {
				ti.Days = n
			}
		case "budget_total":
			if strings.EqualFold(value, BudgetUnsureSentinel) {
				continue
			}
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				ti.BudgetTotal = &v
			}
		}
	}
	ti.FinalizeDates()
	return ti
}
