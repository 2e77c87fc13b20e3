package realtime

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"storepulse/internal/domain"
)

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type route struct {
	topic string
	event string
}

// routes maps bus topics to the websocket topics and events they fan out to.
var routes = map[string][]route{
	domain.TopicSaleCreated:      {{TopicSales, EventSaleNew}},
	domain.TopicInventoryUpdated: {{TopicInventory, EventInventoryUpdated}},
	domain.TopicStockDecreased:   {{TopicInventory, EventInventoryUpdated}},
	domain.TopicStockRestocked:   {{TopicInventory, EventInventoryUpdated}},
	domain.TopicLowStock:         {{TopicInventory, EventInventoryLow}, {TopicAlerts, EventAlertLowStock}},
	domain.TopicDashboardUpdated: {{TopicDashboard, EventMetricsUpdated}},
}

// Bridge forwards bus events to the broadcaster. It is run as a supervised
// service.
type Bridge struct {
	bus         Subscriber
	broadcaster *Broadcaster
	logger      *zap.Logger
}

func NewBridge(bus Subscriber, broadcaster *Broadcaster, logger *zap.Logger) *Bridge {
	return &Bridge{bus: bus, broadcaster: broadcaster, logger: logger}
}

type delivery struct {
	topic string
	msg   *message.Message
}

// Serve blocks until ctx is cancelled or a subscription cannot be made.
func (b *Bridge) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan delivery)
	for topic := range routes {
		ch, err := b.bus.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		go func(topic string, ch <-chan *message.Message) {
			for msg := range ch {
				select {
				case in <- delivery{topic: topic, msg: msg}:
				case <-ctx.Done():
					msg.Nack()
					return
				}
			}
		}(topic, ch)
	}
	b.logger.Info("realtime bridge subscribed", zap.Int("topics", len(routes)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-in:
			b.forward(d.topic, d.msg)
		}
	}
}

func (b *Bridge) forward(topic string, msg *message.Message) {
	defer msg.Ack()

	if !json.Valid(msg.Payload) {
		b.logger.Warn("dropping event with invalid payload",
			zap.String("topic", topic),
			zap.String("messageId", msg.UUID))
		return
	}

	payload := json.RawMessage(msg.Payload)
	for _, r := range routes[topic] {
		n := b.broadcaster.Deliver(r.topic, Message{Event: r.event, Data: payload})
		b.logger.Debug("event forwarded",
			zap.String("busTopic", topic),
			zap.String("topic", r.topic),
			zap.Int("clients", n),
			zap.String("requestId", msg.Metadata.Get("request_id")))
	}
}

func (b *Bridge) String() string {
	return "realtime-bridge"
}
