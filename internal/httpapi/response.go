package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankingSystem/internal/auth"
	"bankingSystem/internal/banking"
	"bankingSystem/models"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrInvalidPhoneNumber),
		errors.Is(err, models.ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, banking.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, banking.ErrAccountNotFound),
		errors.Is(err, models.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainErr writes err with its mapped status. Internal errors are not echoed.
func writeDomainErr(w http.ResponseWriter, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		writeErr(w, errors.New("internal error"), code)
		return
	}
	writeErr(w, err, code)
}
