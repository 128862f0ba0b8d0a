package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON messages to a single Kafka topic.
type Producer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewProducer builds a producer for the configured brokers and topic.
func NewProducer(cfg config.EventsConfig, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info("kafka producer ready", zap.String("topic", cfg.Topic), zap.Strings("brokers", cfg.Brokers))
	return &Producer{writer: writer, topic: cfg.Topic, logger: logger}, nil
}

// Publish serialises value and writes it under key. Messages sharing a key land on the same partition.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", key, err)
	}
	return p.PublishRaw(ctx, key, payload)
}

// PublishRaw writes pre-serialised bytes.
func (p *Producer) PublishRaw(ctx context.Context, key string, payload []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}
	p.logger.Debug("event published", zap.String("topic", p.topic), zap.String("key", key))
	return nil
}

// Topic returns the configured topic.
func (p *Producer) Topic() string {
	return p.topic
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
