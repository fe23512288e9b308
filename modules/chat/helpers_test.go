package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/example/anon-chat-hub/domain/chat"
	"github.com/example/anon-chat-hub/events"
	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any) {}
func (m *mockLogger) Warn(_ string, _ ...any) {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }

const (
	audienceOne    = "one"
	audienceExcept = "except"
	audienceAll    = "all"
)

type emission struct {
	audience string
	connID   string
	event    string
	payload  any
}

// fakeEmitter records every emission in order.
type fakeEmitter struct {
	mu    sync.Mutex
	calls []emission
}

func (e *fakeEmitter) EmitTo(connID, event string, payload any) {
	e.record(emission{audience: audienceOne, connID: connID, event: event, payload: payload})
}

func (e *fakeEmitter) EmitExcept(connID, event string, payload any) {
	e.record(emission{audience: audienceExcept, connID: connID, event: event, payload: payload})
}

func (e *fakeEmitter) EmitAll(event string, payload any) {
	e.record(emission{audience: audienceAll, event: event, payload: payload})
}

func (e *fakeEmitter) record(c emission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, c)
}

func (e *fakeEmitter) emissions() []emission {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]emission, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *fakeEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// recordingNotifier captures room notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	joined  []events.ParticipantJoinedEvent
	left    []events.ParticipantLeftEvent
	posted  []events.MessagePostedEvent
	deleted []events.MessageDeletedEvent
}

func (n *recordingNotifier) ParticipantJoined(e events.ParticipantJoinedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.joined = append(n.joined, e)
}

func (n *recordingNotifier) ParticipantLeft(e events.ParticipantLeftEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.left = append(n.left, e)
}

func (n *recordingNotifier) MessagePosted(e events.MessagePostedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posted = append(n.posted, e)
}

func (n *recordingNotifier) MessageDeleted(e events.MessageDeletedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, e)
}

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("msg-%d", n)
	}
}

func fixedNamePool(name string) *NamePool {
	pool := NewNamePool([]string{name})
	pool.intn = func(int) int { return 0 }
	return pool
}

type roomFixture struct {
	room     *Room
	presence *PresenceStore
	messages *MessageLog
	emitter  *fakeEmitter
	notifier *recordingNotifier
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()
	f := &roomFixture{
		presence: NewPresenceStore(),
		messages: NewMessageLog(),
		emitter:  &fakeEmitter{},
		notifier: &recordingNotifier{},
	}
	f.room = NewRoom(f.presence, f.messages, f.emitter, &mockLogger{},
		WithNamePool(fixedNamePool("Tatu")),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
		WithNotifier(f.notifier),
	)
	return f
}

// namedSession connects id and creates its participant.
func (f *roomFixture) namedSession(t *testing.T, id string) (*Session, domain.Participant) {
	t.Helper()
	s := f.room.Connect(id)
	s.CreateParticipant()
	p, ok := f.presence.Get(id)
	if !ok {
		t.Fatalf("participant %s was not created", id)
	}
	return s, p
}

func messageTexts(msgs []domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// assertReplyIntegrity checks that every reply points at a visible message
// written by a present participant or the system.
func assertReplyIntegrity(t *testing.T, presence *PresenceStore, messages *MessageLog) {
	t.Helper()
	visible := make(map[string]bool)
	snapshot := messages.Snapshot()
	for _, m := range snapshot {
		visible[m.ID] = true
	}
	for _, top := range snapshot {
		for m := &top; m.Reply != nil; m = m.Reply {
			if !visible[m.Reply.ID] {
				t.Errorf("message %s replies to missing message %s", m.ID, m.Reply.ID)
			}
			if m.Reply.User.IsSystem() {
				continue
			}
			if _, ok := presence.Get(m.Reply.User.ID); !ok {
				t.Errorf("message %s replies to absent author %s", m.ID, m.Reply.User.ID)
			}
		}
	}
}
