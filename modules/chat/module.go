package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/anon-chat-hub/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module implements the chat room module with EventBus integration.
type Module struct {
	presence *PresenceStore
	messages *MessageLog
	room     *Room
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new chat module whose room emits through emitter.
func NewModule(emitter Emitter, logger types.Logger, opts ...RoomOption) *Module {
	m := &Module{
		presence: NewPresenceStore(),
		messages: NewMessageLog(),
		logger:   logger,
	}
	opts = append(opts, WithNotifier(&busNotifier{module: m}))
	m.room = NewRoom(m.presence, m.messages, emitter, logger, opts...)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ParticipantJoinedV1.ToBase(),
		events.ParticipantLeftV1.ToBase(),
		events.MessagePostedV1.ToBase(),
		events.MessageDeletedV1.ToBase(),
	}
}

// RegisterServices registers the snapshot services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetUsers,
		json.Unmarshal,
		json.Marshal,
		m.handleGetUsers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetUsers, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetChat,
		json.Unmarshal,
		json.Marshal,
		m.handleGetChat,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetChat, err)
	}

	m.logger.Info("Registered chat services", "services", ServiceGetUsers+", "+ServiceGetChat)
	return nil
}

func (m *Module) handleGetUsers(_ context.Context, _ GetUsersRequest, _ *mono.Msg) (GetUsersResponse, error) {
	return GetUsersResponse{Users: m.room.Participants()}, nil
}

func (m *Module) handleGetChat(_ context.Context, _ GetChatRequest, _ *mono.Msg) (GetChatResponse, error) {
	return GetChatResponse{Messages: m.room.Messages()}, nil
}

// Start initializes the chat module. The room always starts empty.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Chat module started", "namePool", m.room.names.Size())
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	participants, messages := m.room.Counts()
	m.logger.Info("Chat module stopped", "participants", participants, "messages", messages)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	participants, messages := m.room.Counts()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"participants": participants,
			"messages":     messages,
		},
	}
}

// Room returns the shared chat room.
func (m *Module) Room() *Room {
	return m.room
}
