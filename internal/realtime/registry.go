// Package realtime pushes ledger events to websocket clients that
// subscribed to the matching topic.
package realtime

import (
	"sort"
	"sync"
)

// Topics a client can subscribe to.
const (
	TopicSales     = "sales"
	TopicInventory = "inventory"
	TopicAlerts    = "alerts"
	TopicDashboard = "dashboard"
)

var knownTopics = map[string]struct{}{
	TopicSales:     {},
	TopicInventory: {},
	TopicAlerts:    {},
	TopicDashboard: {},
}

func IsTopic(topic string) bool {
	_, ok := knownTopics[topic]
	return ok
}

// Registry maps each topic to the connections subscribed to it.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{topics: make(map[string]map[string]struct{})}
}

// Subscribe adds connID to every known topic in topics and returns the
// topics it is now subscribed to. Unknown topics are ignored; repeating a
// subscription is a no-op.
func (r *Registry) Subscribe(connID string, topics ...string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	accepted := make([]string, 0, len(topics))
	for _, t := range topics {
		if !IsTopic(t) {
			continue
		}
		conns, ok := r.topics[t]
		if !ok {
			conns = make(map[string]struct{})
			r.topics[t] = conns
		}
		conns[connID] = struct{}{}
		accepted = append(accepted, t)
	}
	return accepted
}

func (r *Registry) Unsubscribe(connID string, topics ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range topics {
		r.remove(t, connID)
	}
}

// Disconnect removes connID from every topic.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t := range r.topics {
		r.remove(t, connID)
	}
}

func (r *Registry) remove(topic, connID string) {
	conns, ok := r.topics[topic]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.topics, topic)
	}
}

// Subscribers returns the connections subscribed to topic in a stable order.
func (r *Registry) Subscribers(topic string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.topics[topic]
	out := make([]string, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
