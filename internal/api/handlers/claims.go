package handlers

import (
	"encoding/json"
	"fugitive-hunt-service/internal/api/dto"
	"fugitive-hunt-service/internal/domain"
	"fugitive-hunt-service/internal/ports"
	"fugitive-hunt-service/internal/services"
	"io"
	"net/http"
	"strings"
)

// ClaimHandler accepts allocation batches and lists a session's committed
// claims.
type ClaimHandler struct {
	Catalog ports.CatalogRepository
	Store   ports.GameStore
}

func (h *ClaimHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// submit validates and commits a full batch of claims. The batch either
// lands in its entirety or is rejected with the first violation found.
func (h *ClaimHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitClaimsRequest

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
	if len(req.Claims) == 0 {
		writeError(w, r, http.StatusBadRequest, "claims must not be empty")
		return
	}

	batch := make([]domain.ClaimRequest, 0, len(req.Claims))
	for _, c := range req.Claims {
		if strings.TrimSpace(c.Participant) == "" {
			writeError(w, r, http.StatusBadRequest, "participant is required for every claim")
			return
		}
		if strings.TrimSpace(c.DestinationID) == "" || strings.TrimSpace(c.VehicleID) == "" {
			writeError(w, r, http.StatusBadRequest, "destination_id and vehicle_id are required for every claim")
			return
		}
		batch = append(batch, domain.ClaimRequest{
			Participant:   c.Participant,
			DestinationID: c.DestinationID,
			VehicleID:     c.VehicleID,
		})
	}

	claims, err := services.SubmitBatch(r.Context(), req.SessionID, batch, h.Catalog, h.Store)
	if err != nil {
		writeViolation(w, r, err)
		return
	}

	res := dto.ClaimsResponse{Claims: make([]dto.ClaimResponse, 0, len(claims))}
	for _, c := range claims {
		res.Claims = append(res.Claims, dto.ClaimResponse{
			ClaimID:       c.ClaimID,
			SessionID:     c.SessionID,
			Participant:   c.Participant,
			DestinationID: c.DestinationID,
			VehicleID:     c.VehicleID,
		})
	}

	writeJSON(w, r, http.StatusCreated, res)
}

// list returns a session's committed claims, enriched with destination and
// vehicle detail from the catalog.
func (h *ClaimHandler) list(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, r, http.StatusBadRequest, "session_id is required")
		return
	}

	claims, err := services.ListClaims(r.Context(), sessionID, h.Store)
	if err != nil {
		writeViolation(w, r, err)
		return
	}

	dests, err := h.Catalog.ListDestinations(r.Context())
	if err != nil {
		writeViolation(w, r, err)
		return
	}
	vehicles, err := h.Catalog.ListVehicles(r.Context())
	if err != nil {
		writeViolation(w, r, err)
		return
	}

	destNames := make(map[string]string, len(dests))
	for _, d := range dests {
		destNames[d.DestinationID] = d.Name
	}
	vehicleTypes := make(map[string]string, len(vehicles))
	for _, v := range vehicles {
		vehicleTypes[v.VehicleID] = v.Type
	}

	res := dto.ClaimsResponse{Claims: make([]dto.ClaimResponse, 0, len(claims))}
	for _, c := range claims {
		res.Claims = append(res.Claims, dto.ClaimResponse{
			ClaimID:         c.ClaimID,
			SessionID:       c.SessionID,
			Participant:     c.Participant,
			DestinationID:   c.DestinationID,
			DestinationName: destNames[c.DestinationID],
			VehicleID:       c.VehicleID,
			VehicleType:     vehicleTypes[c.VehicleID],
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
