package chat

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/anon-chat-hub/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort defines the read-side operations other modules may call.
type ChatPort interface {
	ListParticipants(ctx context.Context) ([]domain.Participant, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
}

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// ListParticipants returns the presence snapshot.
func (a *ChatAdapter) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	req := GetUsersRequest{}
	var resp GetUsersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetUsers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return resp.Users, nil
}

// ListMessages returns the message snapshot.
func (a *ChatAdapter) ListMessages(ctx context.Context) ([]domain.Message, error) {
	req := GetChatRequest{}
	var resp GetChatResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetChat,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return resp.Messages, nil
}
