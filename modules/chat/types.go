package chat

import (
	"encoding/json"
	"errors"

	domain "github.com/example/anon-chat-hub/domain/chat"
)

// Inbound event names.
const (
	EventGetUsers      = "getUsers"
	EventCreateUser    = "createUser"
	EventGetChat       = "getChat"
	EventCreateMessage = "createMessage"
	EventDeleteMessage = "deleteMessage"
)

// Outbound event names.
const (
	EventUsers       = "users"
	EventUserCreated = "userCreated"
	EventChat        = "chat"
)

// Handling errors. None of these reach the transport; they exist so callers
// can log and tests can assert.
var (
	ErrMalformedFrame   = errors.New("malformed frame")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrSessionClosed    = errors.New("session closed")
)

// Frame is the envelope exchanged over the WebSocket.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CreateMessagePayload is the data of a createMessage frame.
type CreateMessagePayload struct {
	User  domain.Participant `json:"user"`
	Text  string             `json:"text"`
	Reply *domain.Message    `json:"reply,omitempty"`
}

// DeleteMessagePayload is the data of a deleteMessage frame. Clients send
// the whole message; only the id matters.
type DeleteMessagePayload struct {
	ID string `json:"id"`
}

// Service names registered in the chat ServiceContainer.
const (
	ServiceGetUsers = "get-users"
	ServiceGetChat  = "get-chat"
)

// GetUsersRequest is the request for the get-users service.
type GetUsersRequest struct{}

// GetUsersResponse is the response for the get-users service.
type GetUsersResponse struct {
	Users []domain.Participant `json:"users"`
}

// GetChatRequest is the request for the get-chat service.
type GetChatRequest struct{}

// GetChatResponse is the response for the get-chat service.
type GetChatResponse struct {
	Messages []domain.Message `json:"messages"`
}

// DecodeFrame parses a raw WebSocket frame.
func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, errors.Join(ErrMalformedFrame, err)
	}
	if frame.Event == "" {
		return Frame{}, ErrMalformedFrame
	}
	return frame, nil
}

// EncodeFrame builds the wire representation of an outbound event.
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
