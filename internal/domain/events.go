package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NewOrderCreatedMessage готовит outbox-сообщение для платёжной системы.
func NewOrderCreatedMessage(order Order) (OutboxMessage, error) {
	return newOrderMessage(order.ID, EventTypeOrderCreated, OrderCreatedEvent{
		OrderID:    order.ID,
		ProductIDs: order.ProductIDs(),
	})
}

// NewItemReturnedMessage готовит outbox-сообщение для системы возвратов.
func NewItemReturnedMessage(orderID, productID int64) (OutboxMessage, error) {
	return newOrderMessage(orderID, EventTypeOrderItemReturned, ItemReturnedEvent{
		OrderID:   orderID,
		ProductID: productID,
	})
}

func newOrderMessage(orderID int64, eventType string, payload any) (OutboxMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return OutboxMessage{
		AggregateType: AggregateTypeOrder,
		AggregateID:   strconv.FormatInt(orderID, 10),
		EventType:     eventType,
		Payload:       body,
	}, nil
}
