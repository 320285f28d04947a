package domain

import "time"

// PaymentNotifier — внешняя платёжная система, узнаёт о созданных заказах.
type PaymentNotifier interface {
	// NotifyOrderCreated передаёт данные о новом заказе; должен быть идемпотентным.
	NotifyOrderCreated(event OrderCreatedEvent) error
}

// RefundNotifier — внешняя система возвратов, получает запрос на возврат средств за товар.
type RefundNotifier interface {
	// RequestRefund инициирует возврат средств по позиции заказа; должен быть идемпотентным.
	RequestRefund(event ItemReturnedEvent) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository отдаёт накопленные события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
	// DeleteProcessed удаляет до limit доставленных сообщений, обновлённых не позже before.
	DeleteProcessed(before time.Time, limit int) (int, error)
}

const (
	// AggregateTypeOrder задаёт тип агрегата для всех событий сервиса.
	AggregateTypeOrder = "order"

	// EventTypeOrderCreated уходит в платёжную систему.
	EventTypeOrderCreated = "order.created"
	// EventTypeOrderItemReturned уходит в систему возвратов.
	EventTypeOrderItemReturned = "order.item_returned"
)

// OrderCreatedEvent — полезная нагрузка события о создании заказа.
type OrderCreatedEvent struct {
	OrderID    int64   `json:"order_id"`
	ProductIDs []int64 `json:"product_ids"`
}

// ItemReturnedEvent — полезная нагрузка события о возврате товара.
type ItemReturnedEvent struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
