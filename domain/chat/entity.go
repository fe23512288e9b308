package chat

import "time"

// SystemID is the reserved participant id used for room announcements.
const SystemID = "system"

// SystemName is the display name of the announcement author.
const SystemName = "Sistema 🤖"

// AnonymousSuffix is appended to every generated display name.
const AnonymousSuffix = "anônimo"

// Timestamps are rendered the way Brazilian Portuguese clients expect,
// pinned to UTC so every participant sees the same strings.
const (
	dateLayout = "02/01/2006"
	hourLayout = "15:04"
)

// Created records when a participant or message came into existence.
type Created struct {
	System time.Time `json:"system"`
	Date   string    `json:"date"`
	Hour   string    `json:"hour"`
}

// NewCreated derives the display fields from an instant.
func NewCreated(t time.Time) Created {
	utc := t.UTC()
	return Created{
		System: utc,
		Date:   utc.Format(dateLayout),
		Hour:   utc.Format(hourLayout),
	}
}

// Participant represents a connected, named user.
type Participant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Created Created `json:"created"`
}

// IsSystem reports whether p is the reserved announcement author.
func (p Participant) IsSystem() bool {
	return p.ID == SystemID
}

// SystemParticipant returns the announcement author stamped at t.
func SystemParticipant(t time.Time) Participant {
	return Participant{
		ID:      SystemID,
		Name:    SystemName,
		Created: NewCreated(t),
	}
}

// Message represents a chat message. Reply, when set, is a frozen copy of
// the message being answered.
type Message struct {
	ID      string      `json:"id"`
	User    Participant `json:"user"`
	Text    string      `json:"text"`
	Reply   *Message    `json:"reply"`
	Created Created     `json:"created"`
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	if m.Reply != nil {
		reply := m.Reply.Clone()
		m.Reply = &reply
	}
	return m
}
