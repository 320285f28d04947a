package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

const (
	// ResultOK: операция завершилась успешно.
	ResultOK = "ok"
	// ResultRejected: операция отклонена бизнес-правилом (InvalidArgument).
	ResultRejected = "rejected"
	// ResultError: инфраструктурная ошибка (хранилище, outbox).
	ResultError = "error"
)

// OrderMetrics содержит метрики операций над заказами.
type OrderMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	itemsCreated  prometheus.Counter
	itemsReturned prometheus.Counter
}

// NewOrderMetrics создаёт метрики в глобальном реестре Prometheus.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer создаёт метрики в заданном реестре (удобно для тестов).
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "oms_order_operations_total",
			Help: "Total number of order operations grouped by operation and result",
		}, []string{"operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "oms_order_operation_duration_seconds",
			Help:    "Duration of order operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		itemsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_order_items_created_total",
			Help: "Total number of order items created",
		}),
		itemsReturned: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_order_items_returned_total",
			Help: "Total number of order items returned",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// ResultOf классифицирует ошибку операции для label "result".
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case domain.IsInvalidArgument(err):
		return ResultRejected
	default:
		return ResultError
	}
}

// RecordOperation фиксирует исход и длительность операции.
func (m *OrderMetrics) RecordOperation(operation string, err error, duration time.Duration) {
	m.operations.WithLabelValues(operation, ResultOf(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordItemsCreated увеличивает счётчик созданных позиций.
func (m *OrderMetrics) RecordItemsCreated(count int) {
	m.itemsCreated.Add(float64(count))
}

// RecordItemReturned увеличивает счётчик возвращённых позиций.
func (m *OrderMetrics) RecordItemReturned() {
	m.itemsReturned.Inc()
}
