// Package kafka adapts the platform kafka producer into an audit sink.
// Listing is not supported: the stream is consumed by downstream compliance
// tooling, not read back by this service.
package kafka

import (
	"context"

	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

// Producer is the minimal publishing surface the sink needs.
type Producer interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Store streams audit events to a kafka topic keyed by subject, so events for
// one identity stay ordered within a partition.
type Store struct {
	producer Producer
}

func NewStore(producer Producer) *Store {
	return &Store{producer: producer}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	return s.producer.Publish(ctx, event.Subject, event)
}

func (s *Store) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, sentinel.ErrUnavailable
}
