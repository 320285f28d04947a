package kafka

import "time"

// Topics для Kafka
const (
	// TopicPaymentEvents читает платёжная система.
	TopicPaymentEvents = "oms.payment.events"
	// TopicRefundEvents читает система возвратов.
	TopicRefundEvents = "oms.refund.events"
	// TopicDeadLetterQueue получает уведомления, которые не удалось доставить.
	TopicDeadLetterQueue = "oms.dlq"
)

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderSource    = "x-source"
)

const sourceService = "oms-returns"

// PaymentRequest — сообщение платёжной системе о новом заказе.
type PaymentRequest struct {
	EventType  string    `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	ProductIDs []int64   `json:"product_ids"`
	Timestamp  time.Time `json:"timestamp"`
}

// RefundRequest уходит в систему возвратов как сообщение возвратов о возвращённом товаре.
type RefundRequest struct {
	EventType string    `json:"event_type"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}
