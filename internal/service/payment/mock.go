package payment

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// LogNotifier — заглушка платёжной системы: пишет событие в лог и запоминает его.
// Используется, когда Kafka не настроена, и в тестах.
type LogNotifier struct {
	mu     sync.Mutex
	logger *log.Entry
	events []domain.OrderCreatedEvent

	// Err, если задан, возвращается из NotifyOrderCreated.
	Err error
}

// NewLogNotifier возвращает заглушку с успешным сценарием по умолчанию.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.WithField("component", "payment-notifier")
	}
	return &LogNotifier{logger: logger}
}

// NotifyOrderCreated логирует событие и считает вызовы.
func (n *LogNotifier) NotifyOrderCreated(event domain.OrderCreatedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, event)
	if n.Err != nil {
		return n.Err
	}

	n.logger.WithFields(log.Fields{
		"order_id":    event.OrderID,
		"product_ids": event.ProductIDs,
	}).Info("payment system notified about new order")
	return nil
}

// Events возвращает копию всех полученных событий.
func (n *LogNotifier) Events() []domain.OrderCreatedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.OrderCreatedEvent(nil), n.events...)
}

var _ domain.PaymentNotifier = (*LogNotifier)(nil)
