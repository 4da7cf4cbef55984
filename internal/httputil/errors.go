// Package httputil writes the uniform response envelope used by every
// planner endpoint.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/af-corp/atlas-planner/internal/types"
)

// Envelope is the single response shape for all endpoints. Success responses
// carry Data; clarify responses carry Mode "clarify" plus the question set;
// failures carry Error with a stable code.
type Envelope struct {
	Success   bool             `json:"success"`
	Data      any              `json:"data,omitempty"`
	Error     *ErrorBody       `json:"error,omitempty"`
	Mode      string           `json:"mode,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Questions []types.Question `json:"questions,omitempty"`
	Round     int              `json:"round,omitempty"`
	MaxRounds int              `json:"max_rounds,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ModeClarify marks a response asking the caller for more information.
const ModeClarify = "clarify"

func writeJSON(w http.ResponseWriter, requestID string, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// WriteData writes a 200 success envelope around data.
func WriteData(w http.ResponseWriter, requestID string, data any) {
	writeJSON(w, requestID, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteClarify writes the clarify-mode payload: the open questions for the
// session plus round bookkeeping.
func WriteClarify(w http.ResponseWriter, requestID, sessionID string, questions []types.Question, round, maxRounds int) {
	writeJSON(w, requestID, http.StatusOK, Envelope{
		Success:   true,
		Mode:      ModeClarify,
		SessionID: sessionID,
		Questions: questions,
		Round:     round,
		MaxRounds: maxRounds,
	})
}

// WriteError writes a failure envelope with an explicit status and code.
func WriteError(w http.ResponseWriter, requestID string, status int, code, message, detail string) {
	writeJSON(w, requestID, status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Detail: detail},
	})
}

// WriteDomainError maps a domain error to its HTTP status and writes the
// failure envelope. Non-domain errors become a generic 500.
func WriteDomainError(w http.ResponseWriter, requestID string, err error) {
	var de *types.DomainError
	if !errors.As(err, &de) {
		WriteError(w, requestID, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
		return
	}
	WriteError(w, requestID, statusForCode(de.Code), de.Code, de.Message, de.Detail)
}

// WriteRateLimitError writes the 429 failure for a denied request.
func WriteRateLimitError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, types.CodeRateLimitExceeded, message, "")
}

// WriteAuthError writes a 401 failure for a missing or invalid API key.
func WriteAuthError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusUnauthorized, "INVALID_API_KEY", message, "")
}

// WriteInternalError writes a generic 500 failure.
func WriteInternalError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusInternalServerError, "INTERNAL_ERROR", message, "")
}

// WriteBadRequestError writes a 400 failure for malformed request bodies.
func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, "INVALID_REQUEST", message, "")
}

func statusForCode(code string) int {
	switch code {
	case types.CodeSessionNotFound:
		return http.StatusNotFound
	case types.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case types.CodeDestinationUnresolved:
		return http.StatusUnprocessableEntity
	case types.CodeFlightAPIFail, types.CodeHotelAPIFail, types.CodeSpotFetchFail,
		types.CodeModelJSONInvalid, types.CodeModelChainExhausted,
		types.CodeModelHTTPError, types.CodeModelNetworkFail:
		return http.StatusBadGateway
	case types.CodeItineraryGenFail, types.CodeBudgetAllocFail:
		return http.StatusUnprocessableEntity
	case types.CodeModelAuthMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
