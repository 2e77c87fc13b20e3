package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/domain"
	"storepulse/internal/infrastructure/eventbus"
)

func TestBridge_LowStockFansOutToInventoryAndAlerts(t *testing.T) {
	b := NewBroadcaster(4, zap.NewNop())
	inv := b.OnConnect("inv")
	alerts := b.OnConnect("alerts")
	sales := b.OnConnect("sales")
	b.Subscribe("inv", TopicInventory)
	b.Subscribe("alerts", TopicAlerts)
	b.Subscribe("sales", TopicSales)

	bridge := NewBridge(nil, b, zap.NewNop())
	payload, _ := json.Marshal(domain.LowStockEvent{ProductID: "p1", CurrentStock: 2, ReorderLevel: 10})
	bridge.forward(domain.TopicLowStock, message.NewMessage("m1", payload))

	require.Len(t, inv, 1)
	assert.Equal(t, EventInventoryLow, (<-inv).Event)
	require.Len(t, alerts, 1)
	msg := <-alerts
	assert.Equal(t, EventAlertLowStock, msg.Event)
	assert.JSONEq(t, string(payload), string(msg.Data.(json.RawMessage)))
	assert.Empty(t, sales)
}

func TestBridge_Routes(t *testing.T) {
	tests := []struct {
		busTopic string
		topic    string
		event    string
	}{
		{domain.TopicSaleCreated, TopicSales, EventSaleNew},
		{domain.TopicInventoryUpdated, TopicInventory, EventInventoryUpdated},
		{domain.TopicStockDecreased, TopicInventory, EventInventoryUpdated},
		{domain.TopicStockRestocked, TopicInventory, EventInventoryUpdated},
		{domain.TopicDashboardUpdated, TopicDashboard, EventMetricsUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.busTopic, func(t *testing.T) {
			b := NewBroadcaster(1, zap.NewNop())
			out := b.OnConnect("c")
			b.Subscribe("c", tt.topic)

			NewBridge(nil, b, zap.NewNop()).forward(tt.busTopic, message.NewMessage("m", []byte(`{}`)))

			require.Len(t, out, 1)
			assert.Equal(t, tt.event, (<-out).Event)
		})
	}
}

func TestBridge_InvalidPayloadDropped(t *testing.T) {
	b := NewBroadcaster(1, zap.NewNop())
	out := b.OnConnect("c")
	b.Subscribe("c", TopicSales)

	NewBridge(nil, b, zap.NewNop()).forward(domain.TopicSaleCreated, message.NewMessage("m", []byte("not json")))

	assert.Empty(t, out)
}

func TestBridge_ServeForwardsBusEvents(t *testing.T) {
	bus, err := eventbus.New(config.BusConfig{Driver: config.BusDriverChannel, Buffer: 16}, zap.NewNop())
	require.NoError(t, err)
	defer bus.Close()

	b := NewBroadcaster(16, zap.NewNop())
	out := b.OnConnect("c")
	b.Subscribe("c", TopicSales)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewBridge(bus, b, zap.NewNop()).Serve(ctx) }()

	// Publishing before the bridge has subscribed is lost, so retry.
	var got Message
	assert.Eventually(t, func() bool {
		bus.Publish(context.Background(), domain.TopicSaleCreated, domain.SaleCreatedEvent{ID: "s1"})
		select {
		case got = <-out:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 50*time.Millisecond)
	assert.Equal(t, EventSaleNew, got.Event)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
	}
}
