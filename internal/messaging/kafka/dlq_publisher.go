package kafka

import (
	"encoding/json"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// DLQPublisher складывает недоставленные уведомления в dead letter topic.
type DLQPublisher struct {
	producer *Producer
	topic    string
}

// NewDLQPublisher создаёт publisher для dead letter queue.
func NewDLQPublisher(producer *Producer, topic string) *DLQPublisher {
	if topic == "" {
		topic = TopicDeadLetterQueue
	}
	return &DLQPublisher{producer: producer, topic: topic}
}

// Publish отправляет конверт как есть: payload уже содержит причину ошибки.
func (p *DLQPublisher) Publish(event domain.OutboxMessage) error {
	key := event.AggregateID
	if key == "" {
		key = event.ID
	}
	return p.producer.PublishEvent(p.topic, key, event.EventType, json.RawMessage(event.Payload))
}

var _ domain.OutboxPublisher = (*DLQPublisher)(nil)
