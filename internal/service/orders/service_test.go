package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
	"github.com/vladislavdragonenkov/oms-returns/internal/metrics"
	"github.com/vladislavdragonenkov/oms-returns/internal/service/orders"
	"github.com/vladislavdragonenkov/oms-returns/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newTestService(t *testing.T) (*orders.Service, *memory.OutboxRepository) {
	t.Helper()

	outbox := memory.NewOutboxRepository()
	store := memory.NewOrderStore(outbox)
	svc := orders.NewService(
		store,
		orders.WithLogger(loggerForTests()),
		orders.WithMetrics(metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry())),
	)
	return svc, outbox
}

func ptr(v int64) *int64 { return &v }

func summaryFor(t *testing.T, svc *orders.Service, orderID int64) domain.OrderSummary {
	t.Helper()

	all, err := svc.GetAllOrders(context.Background())
	require.NoError(t, err)
	for _, summary := range all {
		if summary.OrderID == orderID {
			return summary
		}
	}
	t.Fatalf("order %d not listed", orderID)
	return domain.OrderSummary{}
}

func TestCreateOrder_ListsAllProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.NotZero(t, orderID)

	summary := summaryFor(t, svc, orderID)
	assert.ElementsMatch(t, []int64{1, 2, 3}, summary.NonReturnedProductIDs)
}

func TestCreateOrder_EmptyProducts(t *testing.T) {
	svc, outbox := newTestService(t)

	for _, ids := range [][]int64{nil, {}} {
		_, err := svc.CreateOrder(context.Background(), ids)
		require.ErrorIs(t, err, domain.ErrProductIDsEmpty)
		assert.True(t, domain.IsInvalidArgument(err))
	}

	all, err := svc.GetAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, outbox.AllPending())
}

func TestCreateOrder_EnqueuesPaymentNotification(t *testing.T) {
	svc, outbox := newTestService(t)

	orderID, err := svc.CreateOrder(context.Background(), []int64{4, 5})
	require.NoError(t, err)

	pending := outbox.AllPending()
	require.Len(t, pending, 1)
	assert.Equal(t, domain.EventTypeOrderCreated, pending[0].EventType)

	var event domain.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(pending[0].Payload, &event))
	assert.Equal(t, orderID, event.OrderID)
	assert.ElementsMatch(t, []int64{4, 5}, event.ProductIDs)
}

func TestReturnOrder_Success(t *testing.T) {
	svc, outbox := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{5, 6, 7})
	require.NoError(t, err)

	remaining, err := svc.ReturnOrder(ctx, orderID, ptr(5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{6, 7}, remaining)

	pending := outbox.AllPending()
	require.Len(t, pending, 2)
	assert.Equal(t, domain.EventTypeOrderItemReturned, pending[1].EventType)

	var event domain.ItemReturnedEvent
	require.NoError(t, json.Unmarshal(pending[1].Payload, &event))
	assert.Equal(t, domain.ItemReturnedEvent{OrderID: orderID, ProductID: 5}, event)

	_, err = svc.ReturnOrder(ctx, orderID, ptr(5))
	require.ErrorIs(t, err, domain.ErrProductAlreadyReturned)
	assert.Equal(t, "Product already returned", err.Error())
	assert.Len(t, outbox.AllPending(), 2, "rejected return must not notify refund system")
}

func TestReturnOrder_LastItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{9})
	require.NoError(t, err)

	remaining, err := svc.ReturnOrder(ctx, orderID, ptr(9))
	require.NoError(t, err)
	assert.NotNil(t, remaining)
	assert.Empty(t, remaining)
}

func TestReturnOrder_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{1, 2})
	require.NoError(t, err)

	cases := []struct {
		name      string
		orderID   int64
		productID *int64
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "nil product",
			orderID:   orderID,
			productID: nil,
			wantErr:   domain.ErrProductIDRequired,
			wantMsg:   "Product id can not be null",
		},
		{
			name:      "missing order",
			orderID:   orderID + 100,
			productID: ptr(1),
			wantErr:   domain.ErrOrderNotFound,
			wantMsg:   "Order not found",
		},
		{
			name:      "product not in order",
			orderID:   orderID,
			productID: ptr(42),
			wantErr:   domain.ErrProductNotInOrder,
			wantMsg:   "Product not found in order",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReturnOrder(ctx, tc.orderID, tc.productID)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}

	summary := summaryFor(t, svc, orderID)
	assert.ElementsMatch(t, []int64{1, 2}, summary.NonReturnedProductIDs)
}

func TestReturnOrder_DuplicateProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{5, 5, 6})
	require.NoError(t, err)

	remaining, err := svc.ReturnOrder(ctx, orderID, ptr(5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{5, 6}, remaining)

	remaining, err = svc.ReturnOrder(ctx, orderID, ptr(5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{6}, remaining)

	_, err = svc.ReturnOrder(ctx, orderID, ptr(5))
	require.ErrorIs(t, err, domain.ErrProductAlreadyReturned)
}

func TestIssueOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{1, 2})
	require.NoError(t, err)
	_, err = svc.ReturnOrder(ctx, orderID, ptr(1))
	require.NoError(t, err)

	require.NoError(t, svc.IssueOrder(ctx, orderID))

	err = svc.IssueOrder(ctx, orderID)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyIssued)
	assert.Equal(t, "Order was already issued", err.Error())

	// после выдачи возвраты запрещены независимо от состояния позиции
	for _, productID := range []int64{1, 2, 42} {
		_, err = svc.ReturnOrder(ctx, orderID, ptr(productID))
		require.ErrorIs(t, err, domain.ErrOrderAlreadyIssued)
	}
}

func TestIssueOrder_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.IssueOrder(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetAllOrders_ExcludesReturnedAndIsStable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, []int64{4})
	require.NoError(t, err)
	_, err = svc.ReturnOrder(ctx, first, ptr(2))
	require.NoError(t, err)
	_, err = svc.ReturnOrder(ctx, second, ptr(4))
	require.NoError(t, err)

	all, err := svc.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].OrderID)
	assert.ElementsMatch(t, []int64{1, 3}, all[0].NonReturnedProductIDs)
	assert.Equal(t, second, all[1].OrderID)
	assert.Empty(t, all[1].NonReturnedProductIDs)

	again, err := svc.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, again, len(all))
	for i := range all {
		assert.Equal(t, all[i].OrderID, again[i].OrderID)
		assert.ElementsMatch(t, all[i].NonReturnedProductIDs, again[i].NonReturnedProductIDs)
	}
}

func TestReturnOrder_ConcurrentReturnsOfSameProduct(t *testing.T) {
	svc, outbox := newTestService(t)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, []int64{1, 2})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReturnOrder(ctx, orderID, ptr(1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrProductAlreadyReturned):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, rejected)
	// одно событие о создании и одно о возврате
	assert.Len(t, outbox.AllPending(), 2)
}

type failingStore struct {
	err error
}

func (s failingStore) InTx(context.Context, domain.IsolationLevel, func(domain.OrderTx) error) error {
	return s.err
}

func (s failingStore) FindAll(context.Context) ([]domain.Order, error) {
	return nil, s.err
}

func TestService_StoreErrorsAreNotBusinessErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := orders.NewService(
		failingStore{err: storeErr},
		orders.WithLogger(loggerForTests()),
		orders.WithMetrics(metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry())),
	)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, []int64{1})
	require.ErrorIs(t, err, storeErr)
	assert.False(t, domain.IsInvalidArgument(err))

	_, err = svc.GetAllOrders(ctx)
	require.ErrorIs(t, err, storeErr)

	require.ErrorIs(t, svc.IssueOrder(ctx, 1), storeErr)
}
