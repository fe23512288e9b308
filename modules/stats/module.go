package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/anon-chat-hub/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "chat"

// Deletion reasons used as the "reason" label.
const (
	ReasonExplicit   = "explicit"
	ReasonAuthorLeft = "author_left"
)

// Totals is a point-in-time view of room activity.
type Totals struct {
	ParticipantsJoined int `json:"participants_joined"`
	ParticipantsLeft   int `json:"participants_left"`
	MessagesPosted     int `json:"messages_posted"`
	MessagesDeleted    int `json:"messages_deleted"`
	MessagesCascaded   int `json:"messages_cascaded"`
	ActiveParticipants int `json:"active_participants"`
	VisibleMessages    int `json:"visible_messages"`
}

// StatsModule turns chat domain events into counters and Prometheus metrics.
type StatsModule struct {
	mu     sync.RWMutex
	totals Totals

	registry *prometheus.Registry
	joined   prometheus.Counter
	left     prometheus.Counter
	posted   prometheus.Counter
	deleted  *prometheus.CounterVec
	active   prometheus.Gauge
	visible  prometheus.Gauge

	logger types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*StatsModule)(nil)
var _ mono.EventConsumerModule = (*StatsModule)(nil)
var _ mono.HealthCheckableModule = (*StatsModule)(nil)

// NewModule creates a StatsModule with its own metrics registry.
func NewModule(logger types.Logger) *StatsModule {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &StatsModule{
		registry: r,
		joined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "participants_joined_total",
			Help: "Participants created since start.",
		}),
		left: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "participants_left_total",
			Help: "Named participants that disconnected.",
		}),
		posted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_posted_total",
			Help: "Messages appended by participants.",
		}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_deleted_total",
			Help: "Messages removed from the log.",
		}, []string{"reason"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "participants_active",
			Help: "Participants currently present.",
		}),
		visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "messages_visible",
			Help: "Messages currently in the log.",
		}),
		logger: logger,
	}
	r.MustRegister(m.joined, m.left, m.posted, m.deleted, m.active, m.visible)
	return m
}

// Name returns the module name.
func (m *StatsModule) Name() string {
	return "stats"
}

// WatchConnections exposes the number of open transport connections as a
// gauge sampled at scrape time.
func (m *StatsModule) WatchConnections(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Name: "connections_open",
		Help: "Open WebSocket connections.",
	}, func() float64 { return float64(count()) }))
}

// RegisterEventConsumers subscribes to the chat domain events.
func (m *StatsModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.ParticipantJoinedV1, m.handleParticipantJoined, m); err != nil {
		return fmt.Errorf("failed to register ParticipantJoined consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ParticipantLeftV1, m.handleParticipantLeft, m); err != nil {
		return fmt.Errorf("failed to register ParticipantLeft consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MessagePostedV1, m.handleMessagePosted, m); err != nil {
		return fmt.Errorf("failed to register MessagePosted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MessageDeletedV1, m.handleMessageDeleted, m); err != nil {
		return fmt.Errorf("failed to register MessageDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "ParticipantJoined, ParticipantLeft, MessagePosted, MessageDeleted")
	return nil
}

func (m *StatsModule) handleParticipantJoined(_ context.Context, event events.ParticipantJoinedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.ParticipantsJoined++
	m.joined.Inc()
	m.observe(event.ActiveParticipants, event.VisibleMessages)
	return nil
}

func (m *StatsModule) handleParticipantLeft(_ context.Context, event events.ParticipantLeftEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.ParticipantsLeft++
	m.totals.MessagesCascaded += event.RemovedMessages
	m.left.Inc()
	m.deleted.WithLabelValues(ReasonAuthorLeft).Add(float64(event.RemovedMessages))
	m.observe(event.ActiveParticipants, event.VisibleMessages)
	return nil
}

func (m *StatsModule) handleMessagePosted(_ context.Context, event events.MessagePostedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.MessagesPosted++
	m.posted.Inc()
	m.observeMessages(event.VisibleMessages)
	return nil
}

func (m *StatsModule) handleMessageDeleted(_ context.Context, event events.MessageDeletedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.MessagesDeleted++
	m.deleted.WithLabelValues(ReasonExplicit).Inc()
	m.observeMessages(event.VisibleMessages)
	return nil
}

// observe must be called with mu held.
func (m *StatsModule) observe(participants, messages int) {
	m.totals.ActiveParticipants = participants
	m.active.Set(float64(participants))
	m.observeMessages(messages)
}

func (m *StatsModule) observeMessages(messages int) {
	m.totals.VisibleMessages = messages
	m.visible.Set(float64(messages))
}

// Snapshot returns the current totals.
func (m *StatsModule) Snapshot() Totals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals
}

// Registry returns the registry backing /metrics.
func (m *StatsModule) Registry() *prometheus.Registry {
	return m.registry
}

// Start starts the module.
func (m *StatsModule) Start(_ context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop stops the module.
func (m *StatsModule) Stop(_ context.Context) error {
	t := m.Snapshot()
	m.logger.Info("Stats module stopped", "joined", t.ParticipantsJoined, "posted", t.MessagesPosted)
	return nil
}

// Health returns the health status.
func (m *StatsModule) Health(_ context.Context) mono.HealthStatus {
	t := m.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"participants_joined": t.ParticipantsJoined,
			"messages_posted":     t.MessagesPosted,
		},
	}
}
