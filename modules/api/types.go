package api

// CreateRoomRequest is the request body for POST /chatrooms.
type CreateRoomRequest struct {
	RoomName string `json:"roomName"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
