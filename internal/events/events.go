// Package events is a small in-process pub/sub subject. The server uses it
// to push conversation turns and status flips to websocket clients without
// the UI polling.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// HandlerFunc is the function called when an event is emitted.
type HandlerFunc func(context.Context, any) error

// Option configures a Subject.
type Option func(*subjectConfig)

type subjectConfig struct {
	bufferSize   int
	syncDelivery bool
	logger       *slog.Logger
}

// WithBufferSize sets the event channel buffer size.
func WithBufferSize(size int) Option {
	return func(cfg *subjectConfig) { cfg.bufferSize = size }
}

// WithSyncDelivery forces inline delivery inside the event loop goroutine,
// serializing all handler calls. Useful when handlers must not run
// concurrently (e.g. websocket writes).
func WithSyncDelivery() Option {
	return func(cfg *subjectConfig) { cfg.syncDelivery = true }
}

// WithLogger sets a structured logger for handler errors.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *subjectConfig) { cfg.logger = logger }
}

type event struct {
	topic   string
	message any
}

type subscriber struct {
	id      uint64
	topic   string
	handler HandlerFunc
}

// Subject routes emitted events to topic subscribers through a single
// event loop goroutine.
type Subject struct {
	cfg    subjectConfig
	events chan event
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]*subscriber
}

// NewSubject creates a Subject and starts its event loop.
func NewSubject(opts ...Option) *Subject {
	cfg := subjectConfig{bufferSize: 64, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Subject{
		cfg:    cfg,
		events: make(chan event, cfg.bufferSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		subs:   make(map[string][]*subscriber),
	}
	go s.loop()
	return s
}

// Close stops the event loop; pending events are dropped.
func (s *Subject) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

func (s *Subject) loop() {
	defer close(s.done)
	for {
		select {
		case evt := <-s.events:
			s.dispatch(evt)
		case <-s.quit:
			return
		}
	}
}

func (s *Subject) dispatch(evt event) {
	s.mu.RLock()
	subs := make([]*subscriber, len(s.subs[evt.topic]))
	copy(subs, s.subs[evt.topic])
	s.mu.RUnlock()

	ctx := context.Background()
	for _, sub := range subs {
		if s.cfg.syncDelivery {
			s.call(ctx, sub, evt)
		} else {
			go s.call(ctx, sub, evt)
		}
	}
}

func (s *Subject) call(ctx context.Context, sub *subscriber, evt event) {
	if err := sub.handler(ctx, evt.message); err != nil {
		s.cfg.logger.Error("event handler failed",
			slog.String("topic", evt.topic),
			slog.Uint64("subscriber", sub.id),
			slog.Any("error", err))
	}
}

// Subscription unsubscribes its handler when cancelled.
type Subscription struct {
	cancel func()
	active atomic.Bool
}

// Cancel removes the subscription; safe to call more than once.
func (s *Subscription) Cancel() {
	if s.active.CompareAndSwap(true, false) {
		s.cancel()
	}
}

// Emit publishes a value on the given topic. It fails rather than blocking
// forever when the subject is saturated or closed.
func Emit[T any](subject *Subject, topic string, value T) error {
	select {
	case subject.events <- event{topic: topic, message: value}:
		return nil
	case <-subject.quit:
		return fmt.Errorf("emit %q: subject closed", topic)
	case <-time.After(5 * time.Second):
		return fmt.Errorf("emit %q: subject saturated", topic)
	}
}

// Subscribe registers a typed handler for a topic. Events whose payload is
// not a T are reported to the logger, not delivered.
func Subscribe[T any](subject *Subject, topic string, handler func(context.Context, T) error) *Subscription {
	wrapped := HandlerFunc(func(ctx context.Context, data any) error {
		value, ok := data.(T)
		if !ok {
			return fmt.Errorf("topic %q: unexpected payload type %T", topic, data)
		}
		return handler(ctx, value)
	})

	subject.mu.Lock()
	subject.nextID++
	sub := &subscriber{id: subject.nextID, topic: topic, handler: wrapped}
	subject.subs[topic] = append(subject.subs[topic], sub)
	subject.mu.Unlock()

	out := &Subscription{cancel: func() {
		subject.mu.Lock()
		defer subject.mu.Unlock()
		list := subject.subs[topic]
		for i, cand := range list {
			if cand.id == sub.id {
				subject.subs[topic] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}}
	out.active.Store(true)
	return out
}
