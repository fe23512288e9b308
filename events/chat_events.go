package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// ParticipantJoinedEvent is emitted when a connection receives its participant.
type ParticipantJoinedEvent struct {
	ParticipantID      string    `json:"participant_id"`
	Name               string    `json:"name"`
	ActiveParticipants int       `json:"active_participants"`
	VisibleMessages    int       `json:"visible_messages"`
	Timestamp          time.Time `json:"timestamp"`
}

// ParticipantLeftEvent is emitted when a named connection disconnects.
// RemovedMessages counts the messages that vanished with the participant.
type ParticipantLeftEvent struct {
	ParticipantID      string    `json:"participant_id"`
	Name               string    `json:"name"`
	RemovedMessages    int       `json:"removed_messages"`
	ActiveParticipants int       `json:"active_participants"`
	VisibleMessages    int       `json:"visible_messages"`
	Timestamp          time.Time `json:"timestamp"`
}

// MessagePostedEvent is emitted when a message is appended to the log.
type MessagePostedEvent struct {
	MessageID       string    `json:"message_id"`
	AuthorID        string    `json:"author_id"`
	ReplyToID       string    `json:"reply_to_id,omitempty"`
	VisibleMessages int       `json:"visible_messages"`
	Timestamp       time.Time `json:"timestamp"`
}

// MessageDeletedEvent is emitted when a message is explicitly deleted.
type MessageDeletedEvent struct {
	MessageID       string    `json:"message_id"`
	DeletedBy       string    `json:"deleted_by"`
	VisibleMessages int       `json:"visible_messages"`
	Timestamp       time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	ParticipantJoinedV1 = helper.EventDefinition[ParticipantJoinedEvent](
		"chat",
		"ParticipantJoined",
		"v1",
	)

	ParticipantLeftV1 = helper.EventDefinition[ParticipantLeftEvent](
		"chat",
		"ParticipantLeft",
		"v1",
	)

	MessagePostedV1 = helper.EventDefinition[MessagePostedEvent](
		"chat",
		"MessagePosted",
		"v1",
	)

	MessageDeletedV1 = helper.EventDefinition[MessageDeletedEvent](
		"chat",
		"MessageDeleted",
		"v1",
	)
)
