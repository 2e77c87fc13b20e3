// Package eventbus publishes domain events after commit and lets in-process
// consumers subscribe to them. The default driver is an in-process go
// channel; NATS core is used when configured so several instances share one
// stream of events.
package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/metrics"
)

type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	// shared is set when publisher and subscriber are the same pubsub.
	shared bool
	logger *zap.Logger
}

func New(cfg config.BusConfig, logger *zap.Logger) (*Bus, error) {
	adapter := NewZapAdapter(logger)

	switch cfg.Driver {
	case config.BusDriverNATS:
		return newNATSBus(cfg, adapter, logger)
	case config.BusDriverChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.Buffer,
		}, adapter)
		return &Bus{publisher: ch, subscriber: ch, shared: true, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.Driver)
	}
}

func newNATSBus(cfg config.BusConfig, adapter watermill.LoggerAdapter, logger *zap.Logger) (*Bus, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, adapter)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		SubscribersCount: 1,
		CloseTimeout:     5 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, adapter)
	if err != nil {
		pub.Close()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Bus{publisher: pub, subscriber: sub, logger: logger}, nil
}

// Publish encodes payload as JSON and publishes it on topic. Failures are
// logged and counted, never returned: events are notifications, and the
// state they describe is already committed.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.BusPublishFailures.WithLabelValues(topic).Inc()
		b.logger.Error("encoding event", zap.String("topic", topic), zap.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		msg.Metadata.Set("request_id", id)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		metrics.BusPublishFailures.WithLabelValues(topic).Inc()
		b.logger.Error("publishing event", zap.String("topic", topic), zap.Error(err))
	}
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	pubErr := b.publisher.Close()
	if !b.shared {
		if err := b.subscriber.Close(); err != nil {
			return err
		}
	}
	return pubErr
}

type requestIDKey struct{}

// WithRequestID tags events published under ctx with the originating
// request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
