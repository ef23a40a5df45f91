// Package publisher delivers audit events to a store, synchronously by
// default or through a buffered channel when configured.
package publisher

import (
	"context"
	"sync"

	"onboard/pkg/platform/audit"
)

// Publisher emits audit events. With an async buffer, Emit never blocks the
// request path; Close drains outstanding events.
type Publisher struct {
	store audit.Store

	inbox     chan audit.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given channel capacity. When the buffer is full, events are dropped rather
// than blocking a save or finalize call.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// NewPublisher wires a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit delivers one event. Synchronous mode returns the store error; async
// mode enqueues and returns nil.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		// Buffer full: audit must never block onboarding progress.
	}
	return nil
}

// List returns the recorded events for a subject.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Close stops async delivery after draining buffered events.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		_ = p.store.Append(context.Background(), event)
	}
}
