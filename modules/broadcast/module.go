package broadcast

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// BroadcastModule owns the WebSocket hub the chat room emits through.
type BroadcastModule struct {
	hub        *Hub
	cancelHub  context.CancelFunc
	sendBuffer int
	logger     types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule. sendBuffer is the outbound
// queue length given to each client.
func NewModule(sendBuffer int, logger types.Logger) *BroadcastModule {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &BroadcastModule{
		hub:        NewHub(logger),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start starts the hub loop.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Broadcast module started", "sendBuffer", m.sendBuffer)
	return nil
}

// Stop shuts down the hub and closes every client queue.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast module stopped", "clients", clientCount, "droppedFrames", m.hub.DroppedFrames())
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"dropped_frames":    m.hub.DroppedFrames(),
		},
	}
}

// GetHub returns the WebSocket hub.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}

// SendBuffer returns the per-client queue length.
func (m *BroadcastModule) SendBuffer() int {
	return m.sendBuffer
}
