package dto

type StartGameResponse struct {
	SessionID        string `json:"session_id"`
	DestinationCount int    `json:"destination_count"`
}

type ResolveRequest struct {
	SessionID string `json:"session_id"`
}

type WinnerResponse struct {
	Participant   string `json:"participant"`
	DestinationID string `json:"destination_id"`
}

type ResolveResponse struct {
	Outcome string           `json:"outcome"`
	Winners []WinnerResponse `json:"winners"`
	Message string           `json:"message"`
}
