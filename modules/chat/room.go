package chat

import (
	"fmt"
	"sync"
	"time"

	domain "github.com/example/anon-chat-hub/domain/chat"
	"github.com/example/anon-chat-hub/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Emitter delivers named events to connections. Implementations must not
// block: the room calls them while holding its lock.
type Emitter interface {
	EmitTo(connID, event string, payload any)
	EmitExcept(connID, event string, payload any)
	EmitAll(event string, payload any)
}

// Notifier observes room mutations after they have been applied and
// broadcast. It is called once the room lock has been released, so it may
// read the room.
type Notifier interface {
	ParticipantJoined(event events.ParticipantJoinedEvent)
	ParticipantLeft(event events.ParticipantLeftEvent)
	MessagePosted(event events.MessagePostedEvent)
	MessageDeleted(event events.MessageDeletedEvent)
}

type noopNotifier struct{}

func (noopNotifier) ParticipantJoined(events.ParticipantJoinedEvent) {}
func (noopNotifier) ParticipantLeft(events.ParticipantLeftEvent)     {}
func (noopNotifier) MessagePosted(events.MessagePostedEvent)         {}
func (noopNotifier) MessageDeleted(events.MessageDeletedEvent)       {}

// RoomOption configures a Room.
type RoomOption func(*Room)

// WithNamePool sets the pool display names are drawn from.
func WithNamePool(pool *NamePool) RoomOption {
	return func(r *Room) { r.names = pool }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RoomOption {
	return func(r *Room) { r.now = now }
}

// WithIDGenerator overrides the message id generator.
func WithIDGenerator(newID func() string) RoomOption {
	return func(r *Room) { r.newID = newID }
}

// WithNotifier registers an observer for room mutations.
func WithNotifier(n Notifier) RoomOption {
	return func(r *Room) { r.notifier = n }
}

// Room is the single shared chat room. Every operation runs to completion
// under mu, so each broadcast reflects one consistent state.
type Room struct {
	mu       sync.Mutex
	presence *PresenceStore
	messages *MessageLog
	emitter  Emitter
	names    *NamePool
	notifier Notifier
	pending  []func()
	now      func() time.Time
	newID    func() string
	logger   types.Logger
}

// NewRoom creates a room over the given stores.
func NewRoom(presence *PresenceStore, messages *MessageLog, emitter Emitter, logger types.Logger, opts ...RoomOption) *Room {
	r := &Room{
		presence: presence,
		messages: messages,
		emitter:  emitter,
		names:    NewNamePool(nil),
		notifier: noopNotifier{},
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect starts a session for a freshly accepted connection.
func (r *Room) Connect(connID string) *Session {
	r.logger.Debug("Connection opened", "connID", connID)
	return &Session{id: connID, room: r, state: StateAnonymous}
}

// do runs fn under the room lock and delivers the notifications it queued
// after the lock is released.
func (r *Room) do(fn func()) {
	for _, deliver := range r.locked(fn) {
		deliver()
	}
}

func (r *Room) locked(fn func()) []func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
	pending := r.pending
	r.pending = nil
	return pending
}

// queue defers a notification until the current operation unlocks.
func (r *Room) queue(deliver func()) {
	r.pending = append(r.pending, deliver)
}

// Participants returns the current presence snapshot.
func (r *Room) Participants() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presence.Snapshot()
}

// Messages returns the current message snapshot.
func (r *Room) Messages() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages.Snapshot()
}

// Counts returns the number of participants and visible messages.
func (r *Room) Counts() (participants, messages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presence.Len(), r.messages.Len()
}

func (r *Room) announce(text string) domain.Message {
	now := r.now()
	msg := domain.Message{
		ID:      r.newID(),
		User:    domain.SystemParticipant(now),
		Text:    text,
		Created: domain.NewCreated(now),
	}
	r.messages.Append(msg)
	return msg
}

// createParticipant reports whether a new participant was stored.
func (r *Room) createParticipant(connID string) bool {
	p, created := r.presence.UpsertIfAbsent(connID, func() domain.Participant {
		return domain.Participant{
			Name:    r.names.Draw(),
			Created: domain.NewCreated(r.now()),
		}
	})
	if !created {
		existing, ok := r.presence.Get(connID)
		if !ok {
			r.logger.Warn("Refused participant for reserved id", "connID", connID)
			return false
		}
		r.logger.Debug("Duplicate participant request", "connID", connID)
		r.emitter.EmitTo(connID, EventUserCreated, existing)
		return false
	}

	r.announce(fmt.Sprintf("%s entrou 😃", p.Name))

	r.emitter.EmitTo(connID, EventUserCreated, p)
	r.emitter.EmitExcept(connID, EventUsers, r.presence.Snapshot())
	r.emitter.EmitAll(EventChat, r.messages.Snapshot())

	r.logger.Info("Participant joined", "connID", connID, "name", p.Name)
	joined := events.ParticipantJoinedEvent{
		ParticipantID:      p.ID,
		Name:               p.Name,
		ActiveParticipants: r.presence.Len(),
		VisibleMessages:    r.messages.Len(),
		Timestamp:          p.Created.System,
	}
	r.queue(func() { r.notifier.ParticipantJoined(joined) })
	return true
}

func (r *Room) postMessage(author domain.Participant, text string, reply *domain.Message) {
	now := r.now()
	msg := domain.Message{
		ID:      r.newID(),
		User:    author,
		Text:    text,
		Created: domain.NewCreated(now),
	}

	if reply != nil && reply.ID != "" {
		target, ok := r.messages.Get(reply.ID)
		switch {
		case !ok:
			r.logger.Debug("Reply target not found, posting without reply", "messageID", reply.ID)
		case !r.replyable(target):
			r.logger.Debug("Reply target author is not present, posting without reply",
				"messageID", reply.ID, "authorID", target.User.ID)
		default:
			msg.Reply = &target
		}
	}

	r.messages.Append(msg)
	r.emitter.EmitAll(EventChat, r.messages.Snapshot())

	posted := events.MessagePostedEvent{
		MessageID:       msg.ID,
		AuthorID:        author.ID,
		VisibleMessages: r.messages.Len(),
		Timestamp:       now,
	}
	if msg.Reply != nil {
		posted.ReplyToID = msg.Reply.ID
	}
	r.queue(func() { r.notifier.MessagePosted(posted) })
}

// replyable reports whether target's author is the system or still present.
func (r *Room) replyable(target domain.Message) bool {
	if target.User.IsSystem() {
		return true
	}
	_, ok := r.presence.Get(target.User.ID)
	return ok
}

func (r *Room) deleteMessage(connID, messageID string) {
	_, removed := r.messages.RemoveByID(messageID)
	if !removed {
		r.logger.Debug("Delete of unknown message", "connID", connID, "messageID", messageID)
	}

	r.emitter.EmitAll(EventChat, r.messages.Snapshot())

	if removed {
		deleted := events.MessageDeletedEvent{
			MessageID:       messageID,
			DeletedBy:       connID,
			VisibleMessages: r.messages.Len(),
			Timestamp:       r.now(),
		}
		r.queue(func() { r.notifier.MessageDeleted(deleted) })
	}
}

func (r *Room) disconnect(connID string) {
	p, ok := r.presence.Remove(connID)
	if !ok {
		r.logger.Debug("Anonymous connection closed", "connID", connID)
		return
	}

	r.announce(fmt.Sprintf("%s saiu ;-;", p.Name))
	removed := r.messages.RemoveByAuthor(connID)

	r.emitter.EmitExcept(connID, EventUsers, r.presence.Snapshot())
	r.emitter.EmitAll(EventChat, r.messages.Snapshot())

	r.logger.Info("Participant left", "connID", connID, "name", p.Name, "removedMessages", len(removed))
	left := events.ParticipantLeftEvent{
		ParticipantID:      p.ID,
		Name:               p.Name,
		RemovedMessages:    len(removed),
		ActiveParticipants: r.presence.Len(),
		VisibleMessages:    r.messages.Len(),
		Timestamp:          r.now(),
	}
	r.queue(func() { r.notifier.ParticipantLeft(left) })
}
