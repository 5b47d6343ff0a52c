package dto

type ClaimRequest struct {
	Participant   string `json:"participant"`
	DestinationID string `json:"destination_id"`
	VehicleID     string `json:"vehicle_id"`
}

type SubmitClaimsRequest struct {
	SessionID string         `json:"session_id"`
	Claims    []ClaimRequest `json:"claims"`
}

type ClaimResponse struct {
	ClaimID         int64  `json:"claim_id"`
	SessionID       string `json:"session_id"`
	Participant     string `json:"participant"`
	DestinationID   string `json:"destination_id"`
	DestinationName string `json:"destination_name,omitempty"`
	VehicleID       string `json:"vehicle_id"`
	VehicleType     string `json:"vehicle_type,omitempty"`
}

type ClaimsResponse struct {
	Claims []ClaimResponse `json:"claims"`
}
