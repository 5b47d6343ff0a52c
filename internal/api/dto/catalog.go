package dto

type DestinationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

type VehicleResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Range     int    `json:"range"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

type CatalogResponse struct {
	Destinations []DestinationResponse `json:"destinations"`
	Vehicles     []VehicleResponse     `json:"vehicles"`
}
