package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

// New returns a Kafka publisher, or Nop when no brokers are configured.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(brokers)
}

type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}}
}

func encode(topic, key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}, nil
}

// Publish writes one JSON encoded event. Messages sharing a key land on the
// same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	msg, err := encode(topic, key, event)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

func (Nop) Close() error { return nil }
