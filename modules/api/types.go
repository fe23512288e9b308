package api

import (
	domain "github.com/example/anon-chat-hub/domain/chat"
	"github.com/example/anon-chat-hub/modules/stats"
)

// UsersResponse is the API response for the presence snapshot.
type UsersResponse struct {
	Users []domain.Participant `json:"users"`
}

// ChatResponse is the API response for the message snapshot.
type ChatResponse struct {
	Messages []domain.Message `json:"messages"`
}

// StatsResponse is the API response for room activity totals.
type StatsResponse struct {
	stats.Totals
	ConnectedClients int    `json:"connected_clients"`
	DroppedFrames    uint64 `json:"dropped_frames"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
