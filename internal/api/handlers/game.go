package handlers

import (
	"encoding/json"
	"fmt"
	"fugitive-hunt-service/internal/api/dto"
	"fugitive-hunt-service/internal/ports"
	"fugitive-hunt-service/internal/services"
	"io"
	"net/http"
	"strings"
)

// GameHandler drives the session lifecycle: start a round, resolve it.
type GameHandler struct {
	Catalog ports.CatalogRepository
	Store   ports.GameStore
	Rand    services.RandomSource
}

// Start creates a new session with a hidden destination. Only the session id
// and the destination count go back to the caller.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := services.StartSession(r.Context(), h.Catalog, h.Store, h.Rand)
	if err != nil {
		writeViolation(w, r, err)
		return
	}

	res := dto.StartGameResponse{
		SessionID:        result.SessionID,
		DestinationCount: result.DestinationCount,
	}

	writeJSON(w, r, http.StatusCreated, res)
}

// Resolve determines the round's outcome and retires the session. A second
// resolve for the same session gets 404.
func (h *GameHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ResolveRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, r, http.StatusBadRequest, "session_id is required")
		return
	}

	outcome, err := services.ResolveSession(r.Context(), req.SessionID, h.Store)
	if err != nil {
		writeViolation(w, r, err)
		return
	}

	res := dto.ResolveResponse{
		Outcome: "escaped",
		Winners: make([]dto.WinnerResponse, 0, len(outcome.Winners)),
		Message: "Fugitive escaped! No cop found them.",
	}
	if outcome.Captured {
		res.Outcome = "captured"
		res.Message = fmt.Sprintf("%s captured the fugitive!", outcome.Winners[0].Participant)
	}
	for _, winner := range outcome.Winners {
		res.Winners = append(res.Winners, dto.WinnerResponse{
			Participant:   winner.Participant,
			DestinationID: winner.DestinationID,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
