package api

import (
	"fugitive-hunt-service/internal/api/handlers"
	"fugitive-hunt-service/internal/ports"
	"fugitive-hunt-service/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(catalog ports.CatalogRepository, store ports.GameStore, rng services.RandomSource) http.Handler {
	mux := http.NewServeMux()

	catalogHandler := &handlers.CatalogHandler{Catalog: catalog, Store: store}
	claimHandler := &handlers.ClaimHandler{Catalog: catalog, Store: store}
	gameHandler := &handlers.GameHandler{
		Catalog: catalog,
		Store:   store,
		Rand:    rng,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/catalog", catalogHandler.List)
	mux.HandleFunc("/claims", claimHandler.Handle)
	mux.HandleFunc("/game/start", gameHandler.Start)
	mux.HandleFunc("/game/resolve", gameHandler.Resolve)

	return requestIDMiddleware(loggingMiddleware(mux))
}
