package chat

import (
	"sync"

	domain "github.com/example/anon-chat-hub/domain/chat"
)

// PresenceStore provides thread-safe storage for connected participants,
// keyed by connection id and kept in arrival order.
type PresenceStore struct {
	mu           sync.RWMutex
	participants map[string]domain.Participant
	order        []string
}

// NewPresenceStore creates an empty presence store.
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{
		participants: make(map[string]domain.Participant),
		order:        make([]string, 0),
	}
}

// UpsertIfAbsent returns the participant stored under id. When none exists
// it builds one with factory, stores it and reports created=true.
// The reserved system id is never stored.
func (s *PresenceStore) UpsertIfAbsent(id string, factory func() domain.Participant) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, exists := s.participants[id]; exists {
		return p, false
	}

	p := factory()
	p.ID = id
	if p.IsSystem() {
		return p, false
	}

	s.participants[id] = p
	s.order = append(s.order, id)
	return p, true
}

// Get returns the participant for id.
func (s *PresenceStore) Get(id string) (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.participants[id]
	return p, exists
}

// Remove deletes and returns the participant for id.
func (s *PresenceStore) Remove(id string) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.participants[id]
	if !exists {
		return domain.Participant{}, false
	}

	delete(s.participants, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, true
}

// Snapshot returns a copy of all participants in arrival order.
func (s *PresenceStore) Snapshot() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Participant, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.participants[id])
	}
	return result
}

// Len returns the number of connected participants.
func (s *PresenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}
