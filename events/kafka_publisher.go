package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher пишет события операций в топик Kafka, ключ сообщения равен ID счета
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher создает издателя для списка брокеров и топика
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OperationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode operation event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: data,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher возвращает Kafka-издателя или NopPublisher, если брокеры не заданы
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
