package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by every endpoint. The mobile clients switch on these,
// so the strings are part of the API contract.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeAuthFailed   = "AUTH_FAILED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeDuplicate    = "DUPLICATE_ENTRY"
	CodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	CodeServerError  = "SERVER_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

// WriteData writes a success envelope: {"success":true,"data":...}.
func WriteData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope with a top-level message and no
// data payload, used for confirmations like logout.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// WriteError writes a failure envelope:
// {"success":false,"error":{"code":...,"message":...}}.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks the response as uncacheable. Token-bearing responses must
// never be stored by intermediaries.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
