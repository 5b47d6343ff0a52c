package handlers

import (
	"fugitive-hunt-service/internal/api/dto"
	"fugitive-hunt-service/internal/ports"
	"fugitive-hunt-service/internal/services"
	"net/http"
)

// CatalogHandler exposes the read-only destination and vehicle reference
// data, with live availability per vehicle class.
type CatalogHandler struct {
	Catalog ports.CatalogRepository
	Store   ports.GameStore
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	view, err := services.ListCatalog(r.Context(), h.Catalog, h.Store)
	if err != nil {
		writeViolation(w, r, err)
		return
	}

	res := dto.CatalogResponse{
		Destinations: make([]dto.DestinationResponse, 0, len(view.Destinations)),
		Vehicles:     make([]dto.VehicleResponse, 0, len(view.Vehicles)),
	}
	for _, d := range view.Destinations {
		res.Destinations = append(res.Destinations, dto.DestinationResponse{
			ID:       d.DestinationID,
			Name:     d.Name,
			Distance: d.Distance,
		})
	}
	for _, v := range view.Vehicles {
		res.Vehicles = append(res.Vehicles, dto.VehicleResponse{
			ID:        v.Vehicle.VehicleID,
			Type:      v.Vehicle.Type,
			Range:     v.Vehicle.Range,
			Total:     v.Vehicle.TotalStock,
			Available: v.Available,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
