package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes keyed messages to a single topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	nowFn  func() time.Time
}

// NewKafkaPublisher creates a publisher for topic. The writer connects
// lazily on the first publish.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, topic), nil
}

func newPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, nowFn: time.Now}
}

// Publish sends one message. Messages with the same key land on the same
// partition.
func (p *KafkaPublisher) Publish(ctx context.Context, key, value []byte) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  p.nowFn(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Topic() string { return p.topic }

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
