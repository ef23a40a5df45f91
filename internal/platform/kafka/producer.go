// Package kafka provides a thin producer used as the durable sink for
// onboarding audit events. Event shaping happens in pkg/platform/audit; this
// package only moves bytes.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"onboard/internal/platform/config"
)

// Producer publishes JSON records to a single topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the configured brokers and ensures the audit topic
// exists. Topic creation is idempotent; an "already exists" response is not an
// error.
func NewProducer(ctx context.Context, cfg config.KafkaConfig) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 1, 1, nil, cfg.Topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure topic %s: %w", cfg.Topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %s: %w", cfg.Topic, res.Err)
		}
	}

	return &Producer{client: client, topic: cfg.Topic}, nil
}

// Publish produces a single JSON-encoded record keyed by key, waiting for the
// broker ack so callers can decide how to handle delivery failures.
func (p *Producer) Publish(ctx context.Context, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}

	record := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
