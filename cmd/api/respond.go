package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"estateops/allotment"
	"estateops/auth"
	"estateops/broker"
	"estateops/customer"
	"estateops/installment"
	"estateops/property"
)

// envelope is the uniform response shape: {success, data, message, error}.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func (s *Server) respond(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusForError(err)
	if status == http.StatusInternalServerError {
		// Detail stays server-side; the client sees a generic message.
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, envelope{Success: false, Message: msg, Error: msg})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: msg, Error: msg})
}

// statusForError translates domain sentinel errors into HTTP statuses. The
// HTTP layer never sees raw store errors; anything unrecognized is a 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, allotment.ErrNotFound),
		errors.Is(err, allotment.ErrPropertyNotFound),
		errors.Is(err, allotment.ErrCustomerNotFound),
		errors.Is(err, property.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, broker.ErrNotFound),
		errors.Is(err, installment.ErrPlanNotFound),
		errors.Is(err, installment.ErrAllotmentNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, err.Error()

	// The legacy console returned 400 for double allotment; 409 states the
	// conflict semantics precisely, so clients can retry with a different
	// unit instead of fixing the request.
	case errors.Is(err, allotment.ErrPropertyAllotted):
		return http.StatusConflict, err.Error()

	case errors.Is(err, property.ErrDuplicateUnit),
		errors.Is(err, customer.ErrDuplicatePhone),
		errors.Is(err, broker.ErrDuplicateLicense),
		errors.Is(err, installment.ErrDuplicateReceipt),
		errors.Is(err, auth.ErrDuplicateEmail):
		return http.StatusConflict, err.Error()

	case errors.Is(err, allotment.ErrCustomerRequired),
		errors.Is(err, allotment.ErrPropertyRequired),
		errors.Is(err, allotment.ErrDateRequired),
		errors.Is(err, allotment.ErrCustomerReference),
		errors.Is(err, allotment.ErrPropertyReference),
		errors.Is(err, property.ErrUnitNoRequired),
		errors.Is(err, property.ErrInvalidPrice),
		errors.Is(err, property.ErrBrokerReference),
		errors.Is(err, customer.ErrNameRequired),
		errors.Is(err, customer.ErrPhoneRequired),
		errors.Is(err, broker.ErrNameRequired),
		errors.Is(err, installment.ErrInvalidMonths),
		errors.Is(err, installment.ErrInvalidPct),
		errors.Is(err, installment.ErrInvalidAmount),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	}

	return http.StatusInternalServerError, ""
}
