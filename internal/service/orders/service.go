package orders

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
	"github.com/vladislavdragonenkov/oms-returns/internal/metrics"
)

const (
	opCreateOrder  = "create_order"
	opReturnOrder  = "return_order"
	opIssueOrder   = "issue_order"
	opGetAllOrders = "get_all_orders"
)

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics задаёт метрики сервиса.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service — единственная точка изменения заказов: создание, возврат позиции,
// выдача и список. Каждая изменяющая операция выполняется в отдельной транзакции.
type Service struct {
	store   domain.OrderStore
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService конструирует сервис заказов.
func NewService(store domain.OrderStore, options ...Option) *Service {
	s := &Service{store: store}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "order-service")
	}
	if s.metrics == nil {
		s.metrics = metrics.NewOrderMetrics()
	}
	return s
}

// CreateOrder создаёт заказ из списка товаров и ставит уведомление
// платёжной системе в outbox. Возвращает ID созданного заказа.
func (s *Service) CreateOrder(ctx context.Context, productIDs []int64) (orderID int64, err error) {
	start := time.Now()
	defer func() { s.observe(opCreateOrder, orderID, err, start) }()

	order, err := domain.NewOrder(productIDs)
	if err != nil {
		return 0, err
	}

	err = s.store.InTx(ctx, domain.IsolationRepeatableRead, func(tx domain.OrderTx) error {
		if err := tx.Save(ctx, &order); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		return s.publishOrderCreation(ctx, tx, order)
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordItemsCreated(len(order.Items))
	return order.ID, nil
}

// ReturnOrder оформляет возврат одного товара в заказе и возвращает товары,
// по которым возврат ещё не оформлен.
func (s *Service) ReturnOrder(ctx context.Context, orderID int64, productID *int64) (remaining []int64, err error) {
	start := time.Now()
	defer func() { s.observe(opReturnOrder, orderID, err, start) }()

	if productID == nil {
		return nil, domain.ErrProductIDRequired
	}

	err = s.store.InTx(ctx, domain.IsolationReadCommitted, func(tx domain.OrderTx) error {
		order, err := tx.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		item, err := order.ReturnableItem(*productID)
		if err != nil {
			return err
		}
		if err := tx.MarkItemReturned(ctx, item.ID); err != nil {
			return fmt.Errorf("mark item %d returned: %w", item.ID, err)
		}
		if err := s.publishOrderReturn(ctx, tx, orderID, *productID); err != nil {
			return err
		}

		remaining, err = tx.NotReturnedProductIDs(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load not returned products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordItemReturned()
	return remaining, nil
}

// IssueOrder отмечает выдачу заказа получателю.
func (s *Service) IssueOrder(ctx context.Context, orderID int64) (err error) {
	start := time.Now()
	defer func() { s.observe(opIssueOrder, orderID, err, start) }()

	return s.store.InTx(ctx, domain.IsolationReadCommitted, func(tx domain.OrderTx) error {
		order, err := tx.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Issue(); err != nil {
			return err
		}
		if err := tx.MarkIssued(ctx, orderID); err != nil {
			return fmt.Errorf("mark order issued: %w", err)
		}
		return nil
	})
}

// GetAllOrders возвращает все заказы с товарами, по которым не оформлен возврат.
func (s *Service) GetAllOrders(ctx context.Context) (summaries []domain.OrderSummary, err error) {
	start := time.Now()
	defer func() { s.observe(opGetAllOrders, 0, err, start) }()

	orders, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	summaries = make([]domain.OrderSummary, 0, len(orders))
	for i := range orders {
		summaries = append(summaries, orders[i].Summary())
	}
	return summaries, nil
}

// publishOrderCreation сохраняет событие для платёжной системы; доставка идёт через outbox worker.
func (s *Service) publishOrderCreation(ctx context.Context, tx domain.OrderTx, order domain.Order) error {
	msg, err := domain.NewOrderCreatedMessage(order)
	if err != nil {
		return err
	}
	if err := tx.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("enqueue order created: %w", err)
	}
	return nil
}

// publishOrderReturn сохраняет запрос на возврат средств по товару.
func (s *Service) publishOrderReturn(ctx context.Context, tx domain.OrderTx, orderID, productID int64) error {
	msg, err := domain.NewItemReturnedMessage(orderID, productID)
	if err != nil {
		return err
	}
	if err := tx.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("enqueue item returned: %w", err)
	}
	return nil
}

func (s *Service) observe(operation string, orderID int64, err error, start time.Time) {
	duration := time.Since(start)
	s.metrics.RecordOperation(operation, err, duration)

	entry := s.logger.WithFields(log.Fields{
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	})
	if orderID != 0 {
		entry = entry.WithField("order_id", orderID)
	}

	switch metrics.ResultOf(err) {
	case metrics.ResultOK:
		entry.Debug("operation completed")
	case metrics.ResultRejected:
		entry.WithError(err).Info("operation rejected")
	default:
		entry.WithError(err).Error("operation failed")
	}
}
