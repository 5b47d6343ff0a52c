package handlers

import (
	"encoding/json"
	"errors"
	"fugitive-hunt-service/internal/domain"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeViolation maps the domain taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a store failure and surfaces as an opaque 500.
func writeViolation(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrCatalogEmpty), errors.Is(err, domain.ErrEmptyBatch):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var unavailable *domain.VehicleUnavailableError
	if errors.As(err, &unavailable) {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	var unknown *domain.UnknownReferenceError
	var duplicate *domain.DuplicateDestinationError
	var shortRange *domain.InsufficientRangeError
	if errors.As(err, &unknown) || errors.As(err, &duplicate) || errors.As(err, &shortRange) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("internal error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
