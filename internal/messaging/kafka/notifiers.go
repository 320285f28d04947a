package kafka

import (
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// PaymentNotifier сообщает платёжной системе о новых заказах через topic оплаты.
type PaymentNotifier struct {
	producer *Producer
	topic    string
}

// NewPaymentNotifier создаёт notifier; пустой topic заменяется на TopicPaymentEvents.
func NewPaymentNotifier(producer *Producer, topic string) *PaymentNotifier {
	if topic == "" {
		topic = TopicPaymentEvents
	}
	return &PaymentNotifier{producer: producer, topic: topic}
}

// NotifyOrderCreated публикует PaymentRequest с ключом по ID заказа.
func (n *PaymentNotifier) NotifyOrderCreated(event domain.OrderCreatedEvent) error {
	return n.producer.PublishEvent(n.topic, orderKey(event.OrderID), domain.EventTypeOrderCreated, PaymentRequest{
		EventType:  domain.EventTypeOrderCreated,
		OrderID:    event.OrderID,
		ProductIDs: event.ProductIDs,
		Timestamp:  time.Now().UTC(),
	})
}

// RefundNotifier передаёт системе возвратов запросы на возврат средств.
type RefundNotifier struct {
	producer *Producer
	topic    string
}

// NewRefundNotifier создаёт notifier; пустой topic заменяется на TopicRefundEvents.
func NewRefundNotifier(producer *Producer, topic string) *RefundNotifier {
	if topic == "" {
		topic = TopicRefundEvents
	}
	return &RefundNotifier{producer: producer, topic: topic}
}

// RequestRefund публикует RefundRequest. Все события одного заказа попадают в одну партицию.
func (n *RefundNotifier) RequestRefund(event domain.ItemReturnedEvent) error {
	return n.producer.PublishEvent(n.topic, orderKey(event.OrderID), domain.EventTypeOrderItemReturned, RefundRequest{
		EventType: domain.EventTypeOrderItemReturned,
		OrderID:   event.OrderID,
		ProductID: event.ProductID,
		Timestamp: time.Now().UTC(),
	})
}

func orderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

var (
	_ domain.PaymentNotifier = (*PaymentNotifier)(nil)
	_ domain.RefundNotifier  = (*RefundNotifier)(nil)
)
