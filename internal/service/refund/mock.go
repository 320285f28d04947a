package refund

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// LogNotifier — заглушка системы возвратов.
type LogNotifier struct {
	mu     sync.Mutex
	logger *log.Entry
	events []domain.ItemReturnedEvent

	Err error
}

// NewLogNotifier возвращает заглушку, которая только пишет в лог.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.WithField("component", "refund-notifier")
	}
	return &LogNotifier{logger: logger}
}

// RequestRefund логирует запрос на возврат средств.
func (n *LogNotifier) RequestRefund(event domain.ItemReturnedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, event)
	if n.Err != nil {
		return n.Err
	}

	n.logger.WithFields(log.Fields{
		"order_id":   event.OrderID,
		"product_id": event.ProductID,
	}).Info("refund requested for returned product")
	return nil
}

// Events возвращает копию всех полученных запросов.
func (n *LogNotifier) Events() []domain.ItemReturnedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.ItemReturnedEvent(nil), n.events...)
}

var _ domain.RefundNotifier = (*LogNotifier)(nil)
