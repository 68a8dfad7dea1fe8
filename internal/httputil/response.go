package httputil

import (
	"encoding/json"
	"net/http"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models/dataroom"
)

// Envelope is the body of every JSON response.
// Exactly one of Data/Message or Error is meaningful, depending on Success.
type Envelope struct {
	Success    bool                 `json:"success"`
	Data       interface{}          `json:"data,omitempty"`
	Message    string               `json:"message,omitempty"`
	Pagination *dataroom.Pagination `json:"pagination,omitempty"`
	Error      *ErrorBody           `json:"error,omitempty"`
}

// ErrorBody carries the stable error kind and a caller-safe message
type ErrorBody struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// RespondJSON writes a success envelope around data with the given status code
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// RespondMessage writes a success envelope with only a message, used for deletions
func RespondMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: true, Message: message})
}

// RespondPage writes one page of a listing with its pagination metadata
func RespondPage(w http.ResponseWriter, data interface{}, pagination dataroom.Pagination) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &pagination})
}

// RespondError writes a failure envelope
func RespondError(w http.ResponseWriter, status int, kind domain.ErrorKind, message string) {
	write(w, status, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: kind, Message: message},
	})
}

// write marshals first so an encoding failure never leaves a partial response
func write(w http.ResponseWriter, status int, body Envelope) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":{"kind":"upstream_failure","message":"failed to encode response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
