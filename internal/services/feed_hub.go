package services

import (
	"context"
	"sync"

	"sevagan-backend/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Subscription is an open live feed listener. Its Events channel is closed
// once the subscription is removed from the hub.
type Subscription struct {
	id     string
	events chan []byte
	done   chan struct{}
	hub    *FeedHub
	once   sync.Once
}

// ID returns the subscription id
func (s *Subscription) ID() string {
	return s.id
}

// Events delivers serialized needs in creation order
func (s *Subscription) Events() <-chan []byte {
	return s.events
}

// Close removes the subscription from the hub. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// FeedHub fans newly created needs out to every open subscription
type FeedHub struct {
	mu         sync.RWMutex
	subs       map[string]*Subscription
	bufferSize int
}

// NewFeedHub creates a hub whose subscriptions buffer up to bufferSize events
func NewFeedHub(bufferSize int) *FeedHub {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &FeedHub{
		subs:       make(map[string]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new open subscription. It is closed automatically
// when ctx is done.
func (h *FeedHub) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		id:     uuid.New().String(),
		events: make(chan []byte, h.bufferSize),
		done:   make(chan struct{}),
		hub:    h,
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	log.Info().Str("subscription_id", sub.id).Int("total_subscribers", count).Msg("Feed subscription opened")

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

func (h *FeedHub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.events)
	close(sub.done)
	metrics.FeedSubscribers.Dec()

	log.Info().Str("subscription_id", sub.id).Int("total_subscribers", len(h.subs)).Msg("Feed subscription closed")
}

// Publish queues payload on every open subscription without blocking. A
// subscription whose buffer is full misses this event. Returns the number of
// subscriptions the event was queued for.
func (h *FeedHub) Publish(payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		select {
		case sub.events <- payload:
			delivered++
		default:
			metrics.FeedEventsDropped.Inc()
			log.Warn().Str("subscription_id", sub.id).Msg("Feed subscriber too slow, event dropped")
		}
	}
	metrics.FeedEventsDelivered.Add(float64(delivered))
	return delivered
}

// Count returns the number of open subscriptions
func (h *FeedHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every open subscription
func (h *FeedHub) Close() {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Close()
	}
}
