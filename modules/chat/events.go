package chat

import "github.com/example/anon-chat-hub/events"

// busNotifier publishes room mutations on the module's EventBus.
type busNotifier struct {
	module *Module
}

func (n *busNotifier) ParticipantJoined(event events.ParticipantJoinedEvent) {
	if n.module.eventBus == nil {
		return
	}
	if err := events.ParticipantJoinedV1.Publish(n.module.eventBus, event, nil); err != nil {
		n.module.logger.Warn("Failed to publish ParticipantJoined event", "error", err)
	}
}

func (n *busNotifier) ParticipantLeft(event events.ParticipantLeftEvent) {
	if n.module.eventBus == nil {
		return
	}
	if err := events.ParticipantLeftV1.Publish(n.module.eventBus, event, nil); err != nil {
		n.module.logger.Warn("Failed to publish ParticipantLeft event", "error", err)
	}
}

func (n *busNotifier) MessagePosted(event events.MessagePostedEvent) {
	if n.module.eventBus == nil {
		return
	}
	if err := events.MessagePostedV1.Publish(n.module.eventBus, event, nil); err != nil {
		n.module.logger.Warn("Failed to publish MessagePosted event", "error", err)
	}
}

func (n *busNotifier) MessageDeleted(event events.MessageDeletedEvent) {
	if n.module.eventBus == nil {
		return
	}
	if err := events.MessageDeletedV1.Publish(n.module.eventBus, event, nil); err != nil {
		n.module.logger.Warn("Failed to publish MessageDeleted event", "error", err)
	}
}
