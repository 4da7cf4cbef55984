package types

import "fmt"

// Stable domain error codes. Every failure surfaced to a caller carries one
// of these, suitable for programmatic branching.
const (
	CodeFlightAPIFail         = "FLIGHT_API_FAIL"
	CodeHotelAPIFail          = "HOTEL_API_FAIL"
	CodeSpotFetchFail         = "SPOT_FETCH_FAIL"
	CodeItineraryGenFail      = "ITINERARY_GEN_FAIL"
	CodeBudgetAllocFail       = "BUDGET_ALLOC_FAIL"
	CodeModelAuthMissing      = "MODEL_AUTH_MISSING"
	CodeModelHTTPError        = "MODEL_HTTP_ERROR"
	CodeModelNetworkFail      = "MODEL_NETWORK_FAIL"
	CodeModelJSONInvalid      = "MODEL_JSON_INVALID"
	CodeModelChainExhausted   = "MODEL_CHAIN_EXHAUSTED"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeDestinationUnresolved = "DESTINATION_UNRESOLVED"
	CodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
)

// Warning codes accumulated on budget allocation. Non-fatal.
const (
	WarnBudgetEstimated = "BUDGET_ESTIMATED"
	WarnTransportLow    = "TRANSPORT_BUDGET_LOW"
	WarnDailyBudgetLow  = "DAILY_BUDGET_TOO_LOW"
	WarnDailyBudgetHigh = "DAILY_BUDGET_TOO_HIGH"
)

// DomainError carries a stable code, a human message, and optional detail.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Message + " - " + e.Detail
	}
	return e.Code + ": " + e.Message
}

// NewDomainError builds a DomainError without detail.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorf builds a DomainError with formatted detail.
func NewDomainErrorf(code, message, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: message, Detail: fmt.Sprintf(format, args...)}
}
