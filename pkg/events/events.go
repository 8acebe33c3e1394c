package events

import (
	"context"
	"sync"
)

const (
	TopicUser    = "user_events"
	TopicCart    = "cart_events"
	TopicProduct = "product_events"
	TopicContact = "contact_events"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                          { return nil }

type Recorded struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events(topic string) []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Recorded
	for _, e := range r.events {
		if topic == "" || e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
