package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"storepulse/internal/infrastructure/metrics"
)

// Outgoing event names.
const (
	EventConnected        = "connected"
	EventSubscribed       = "subscribed"
	EventUnsubscribed     = "unsubscribed"
	EventDashboard        = "dashboard"
	EventPong             = "pong"
	EventError            = "error"
	EventSaleNew          = "sale:new"
	EventInventoryUpdated = "inventory:updated"
	EventInventoryLow     = "inventory:low-stock"
	EventAlertLowStock    = "alert:low-stock"
	EventMetricsUpdated   = "metrics:updated"
)

type Message struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster owns the per-connection outboxes. Delivery never blocks: a
// connection whose outbox is full misses the message.
type Broadcaster struct {
	registry *Registry
	buffer   int
	logger   *zap.Logger

	mu    sync.RWMutex
	sinks map[string]chan Message
}

func NewBroadcaster(buffer int, logger *zap.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broadcaster{
		registry: NewRegistry(),
		buffer:   buffer,
		logger:   logger,
		sinks:    make(map[string]chan Message),
	}
}

// OnConnect registers connID and returns its outbox. The channel is closed
// by OnDisconnect.
func (b *Broadcaster) OnConnect(connID string) <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.sinks[connID]; ok {
		close(old)
	}
	sink := make(chan Message, b.buffer)
	b.sinks[connID] = sink
	metrics.WebSocketConnections.Inc()
	return sink
}

func (b *Broadcaster) OnDisconnect(connID string) {
	b.registry.Disconnect(connID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if sink, ok := b.sinks[connID]; ok {
		close(sink)
		delete(b.sinks, connID)
		metrics.WebSocketConnections.Dec()
	}
}

func (b *Broadcaster) Subscribe(connID string, topics ...string) []string {
	return b.registry.Subscribe(connID, topics...)
}

func (b *Broadcaster) Unsubscribe(connID string, topics ...string) {
	b.registry.Unsubscribe(connID, topics...)
}

// Deliver forwards msg to the current subscribers of topic and reports how
// many outboxes accepted it.
func (b *Broadcaster) Deliver(topic string, msg Message) int {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, id := range b.registry.Subscribers(topic) {
		sink, ok := b.sinks[id]
		if !ok {
			continue
		}
		select {
		case sink <- msg:
			delivered++
		default:
			metrics.RealtimeDropped.WithLabelValues(topic).Inc()
			b.logger.Debug("client outbox full, message dropped",
				zap.String("connId", id),
				zap.String("topic", topic),
				zap.String("event", msg.Event))
		}
	}
	return delivered
}

// Send queues msg for a single connection.
func (b *Broadcaster) Send(connID string, msg Message) bool {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	sink, ok := b.sinks[connID]
	if !ok {
		return false
	}
	select {
	case sink <- msg:
		return true
	default:
		return false
	}
}

func (b *Broadcaster) Registry() *Registry {
	return b.registry
}
