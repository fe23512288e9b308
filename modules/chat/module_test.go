package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(emitter Emitter) *Module {
	return NewModule(emitter, &mockLogger{}, WithNamePool(fixedNamePool("Tatu")))
}

func TestModule_Name(t *testing.T) {
	m := newTestModule(&fakeEmitter{})
	assert.Equal(t, "chat", m.Name())
}

func TestModule_EmitEvents(t *testing.T) {
	m := newTestModule(&fakeEmitter{})

	defs := m.EmitEvents()

	assert.Len(t, defs, 4)
}

func TestModule_Lifecycle(t *testing.T) {
	m := newTestModule(&fakeEmitter{})
	ctx := context.Background()

	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Stop(ctx))
}

func TestModule_SnapshotServices(t *testing.T) {
	m := newTestModule(&fakeEmitter{})
	ctx := context.Background()

	users, err := m.handleGetUsers(ctx, GetUsersRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, users.Users)

	m.Room().Connect("c1").CreateParticipant()

	users, err = m.handleGetUsers(ctx, GetUsersRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "Tatu anônimo", users.Users[0].Name)

	chat, err := m.handleGetChat(ctx, GetChatRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "Tatu anônimo entrou 😃", chat.Messages[0].Text)
}

func TestModule_NoEventBusDoesNotBreakRoom(t *testing.T) {
	emitter := &fakeEmitter{}
	m := newTestModule(emitter)

	s := m.Room().Connect("c1")
	s.CreateParticipant()
	s.Disconnect()

	assert.NotEmpty(t, emitter.emissions())
}

func TestModule_Health(t *testing.T) {
	m := newTestModule(&fakeEmitter{})
	m.Room().Connect("c1").CreateParticipant()

	health := m.Health(context.Background())

	assert.True(t, health.Healthy)
	assert.Equal(t, "operational", health.Message)
	assert.Equal(t, 1, health.Details["participants"])
	assert.Equal(t, 1, health.Details["messages"])
}
