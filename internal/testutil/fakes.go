package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
)

type PublishedEvent struct {
	Topic   string
	Payload any
}

// RecordingPublisher captures every published event in order.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, topic string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Payload: payload})
}

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

func (p *RecordingPublisher) Count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

func (p *RecordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

// NewTestCache returns a cache over an in-memory badger store.
func NewTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	store, err := cache.OpenBadgerStore("")
	if err != nil {
		t.Fatalf("opening cache store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return cache.New(store, config.CacheConfig{
		OpTimeout:       time.Second,
		BreakerFailures: 5,
		BreakerOpenFor:  time.Second,
	}, zap.NewNop())
}
