/**
 * @description
 * This file contains the JSON response helpers shared by all handlers,
 * including the mapping from domain error kinds to HTTP status codes.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/corebank/ledger-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

// writeError maps a domain error to its HTTP status and writes it. Errors
// without a domain kind become 500s.
func writeError(w http.ResponseWriter, err error) {
	var domErr *domain.Error
	if !errors.As(err, &domErr) {
		log.Printf("level=error component=api msg=\"internal error\" err=%v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, statusForKind(domErr.Kind), errorResponse{Error: domErr.Error()})
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindAccountNotFound:
		return http.StatusNotFound
	case domain.KindInvalidAmount, domain.KindInvalidOperation:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds, domain.KindOverdraftExceeded:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
