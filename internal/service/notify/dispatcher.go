package notify

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// Dispatcher маршрутизирует события outbox во внешние системы по их типу.
type Dispatcher struct {
	payments domain.PaymentNotifier
	refunds  domain.RefundNotifier
}

// NewDispatcher создаёт Dispatcher.
func NewDispatcher(payments domain.PaymentNotifier, refunds domain.RefundNotifier) *Dispatcher {
	return &Dispatcher{payments: payments, refunds: refunds}
}

// Publish декодирует payload и вызывает соответствующий notifier.
// Для неизвестного типа возвращается domain.ErrUnknownEventType, для битого payload domain.ErrMalformedPayload.
func (d *Dispatcher) Publish(msg domain.OutboxMessage) error {
	switch msg.EventType {
	case domain.EventTypeOrderCreated:
		var event domain.OrderCreatedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("%w: decode %s: %v", domain.ErrMalformedPayload, msg.EventType, err)
		}
		return d.payments.NotifyOrderCreated(event)

	case domain.EventTypeOrderItemReturned:
		var event domain.ItemReturnedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("%w: decode %s: %v", domain.ErrMalformedPayload, msg.EventType, err)
		}
		return d.refunds.RequestRefund(event)

	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownEventType, msg.EventType)
	}
}

var _ domain.OutboxPublisher = (*Dispatcher)(nil)
