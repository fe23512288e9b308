package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/anon-chat-hub/domain/chat"
)

// SessionState is the lifecycle stage of a connection.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateNamed
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "connected-anonymous"
	case StateNamed:
		return "connected-named"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session binds one connection to the room. Its state is guarded by the
// room lock.
type Session struct {
	id    string
	room  *Room
	state SessionState
}

// ID returns the connection identity.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle stage.
func (s *Session) State() SessionState {
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	return s.state
}

// CreateParticipant names the connection, or repeats the existing record
// to the caller when it is already named.
func (s *Session) CreateParticipant() {
	s.room.do(func() {
		if s.state == StateDisconnected {
			return
		}
		s.room.createParticipant(s.id)
		if _, ok := s.room.presence.Get(s.id); ok {
			s.state = StateNamed
		}
	})
}

// GetPresence sends the presence snapshot to this connection.
func (s *Session) GetPresence() {
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	if s.state == StateDisconnected {
		return
	}
	s.room.emitter.EmitTo(s.id, EventUsers, s.room.presence.Snapshot())
}

// GetMessages sends the message snapshot to this connection.
func (s *Session) GetMessages() {
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	if s.state == StateDisconnected {
		return
	}
	s.room.emitter.EmitTo(s.id, EventChat, s.room.messages.Snapshot())
}

// PostMessage appends a message attributed to author. The author is taken
// as supplied by the client.
func (s *Session) PostMessage(author domain.Participant, text string, reply *domain.Message) {
	s.room.do(func() {
		if s.state == StateDisconnected {
			return
		}
		s.room.postMessage(author, text, reply)
	})
}

// DeleteMessage removes the message with the given id, if any, and
// rebroadcasts the log.
func (s *Session) DeleteMessage(messageID string) {
	s.room.do(func() {
		if s.state == StateDisconnected {
			return
		}
		s.room.deleteMessage(s.id, messageID)
	})
}

// Disconnect ends the session. Later calls are no-ops.
func (s *Session) Disconnect() {
	s.room.do(func() {
		if s.state == StateDisconnected {
			return
		}
		s.state = StateDisconnected
		s.room.disconnect(s.id)
	})
}

// Handle decodes one inbound frame and applies it. The returned error is
// informational: the room state is never left half-applied.
func (s *Session) Handle(data []byte) error {
	if s.State() == StateDisconnected {
		return ErrSessionClosed
	}

	frame, err := DecodeFrame(data)
	if err != nil {
		return err
	}

	switch frame.Event {
	case EventGetUsers:
		s.GetPresence()
	case EventCreateUser:
		s.CreateParticipant()
	case EventGetChat:
		s.GetMessages()
	case EventCreateMessage:
		var payload CreateMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return errors.Join(ErrMalformedPayload, err)
		}
		if payload.User.ID == "" {
			return fmt.Errorf("%w: missing user", ErrMalformedPayload)
		}
		s.PostMessage(payload.User, payload.Text, payload.Reply)
	case EventDeleteMessage:
		var payload DeleteMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return errors.Join(ErrMalformedPayload, err)
		}
		if payload.ID == "" {
			return fmt.Errorf("%w: missing id", ErrMalformedPayload)
		}
		s.DeleteMessage(payload.ID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, frame.Event)
	}
	return nil
}
