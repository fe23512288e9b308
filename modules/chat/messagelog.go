package chat

import (
	"sync"

	domain "github.com/example/anon-chat-hub/domain/chat"
)

// MessageLog provides thread-safe storage for the visible messages in
// arrival order. Deletions rebuild the log and sever replies that would
// otherwise point at something gone.
type MessageLog struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewMessageLog creates an empty message log.
func NewMessageLog() *MessageLog {
	return &MessageLog{
		messages: make([]domain.Message, 0),
	}
}

// Append adds msg to the end of the log. Id uniqueness is left to the
// caller's id generator.
func (l *MessageLog) Append(msg domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg.Clone())
}

// Get returns a copy of the message with the given id.
func (l *MessageLog) Get(messageID string) (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, msg := range l.messages {
		if msg.ID == messageID {
			return msg.Clone(), true
		}
	}
	return domain.Message{}, false
}

// RemoveByID deletes the message with the given id and clears every reply
// that targeted it, at any depth. Unknown ids leave the log untouched.
func (l *MessageLog) RemoveByID(messageID string) (domain.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed domain.Message
	found := false
	kept := make([]domain.Message, 0, len(l.messages))
	for _, msg := range l.messages {
		if msg.ID == messageID {
			removed = msg
			found = true
			continue
		}
		kept = append(kept, msg)
	}
	if !found {
		return domain.Message{}, false
	}

	for i := range kept {
		severReplies(&kept[i], func(target *domain.Message) bool {
			return target.ID == messageID
		})
	}
	l.messages = kept
	return removed, true
}

// RemoveByAuthor deletes every message written by authorID in one pass.
// Surviving replies are cleared when their target was removed or was
// written by authorID.
func (l *MessageLog) RemoveByAuthor(authorID string) []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	removedIDs := make(map[string]struct{})
	removed := make([]domain.Message, 0)
	kept := make([]domain.Message, 0, len(l.messages))
	for _, msg := range l.messages {
		if msg.User.ID == authorID {
			removedIDs[msg.ID] = struct{}{}
			removed = append(removed, msg)
			continue
		}
		kept = append(kept, msg)
	}

	for i := range kept {
		severReplies(&kept[i], func(target *domain.Message) bool {
			_, gone := removedIDs[target.ID]
			return gone || target.User.ID == authorID
		})
	}
	l.messages = kept
	return removed
}

// severReplies walks msg's chain of embedded replies and cuts it at the first
// link whose target is gone.
func severReplies(msg *domain.Message, gone func(target *domain.Message) bool) {
	for link := msg; link.Reply != nil; link = link.Reply {
		if gone(link.Reply) {
			link.Reply = nil
			return
		}
	}
}

// Snapshot returns a deep copy of the log in arrival order.
func (l *MessageLog) Snapshot() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Message, len(l.messages))
	for i, msg := range l.messages {
		result[i] = msg.Clone()
	}
	return result
}

// Len returns the number of visible messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
