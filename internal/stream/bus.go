// Package stream provides the in-process change notification bus behind the
// live subscriptions. A publish wakes every subscriber of the topic; the
// subscriber then re-queries its full result set, so notifications carry no
// payload and may be coalesced.
package stream

import (
	"strconv"
	"sync"
)

const (
	// TopicChats fires on every chat creation.
	TopicChats = "chats"
	// TopicStatuses fires on every status creation.
	TopicStatuses = "statuses"
)

// TopicMessages names the per-chat message topic.
func TopicMessages(chatID int) string {
	return "messages." + strconv.Itoa(chatID)
}

// Bus fans change notifications out to topic subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new subscription on the topic.
func (b *Bus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		bus:    b,
		topic:  topic,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[topic]; !ok {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub
}

// Publish wakes every subscriber of the topic without blocking. A wakeup
// already pending on a subscriber is not duplicated.
func (b *Bus) Publish(topic string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[topic] {
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subs[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subs, sub.topic)
		}
	}
}

// Subscription is an owned handle on a topic registration. After Cancel no
// further notifications are delivered.
type Subscription struct {
	bus    *Bus
	topic  string
	notify chan struct{}
	done   chan struct{}
	cancel sync.Once
}

// Notify returns the wakeup channel.
func (s *Subscription) Notify() <-chan struct{} {
	return s.notify
}

// Done is closed once the subscription has been cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel deregisters the subscription. It is idempotent and safe to call
// from any goroutine.
func (s *Subscription) Cancel() {
	s.cancel.Do(func() {
		s.bus.remove(s)
		close(s.done)
	})
}
