package notify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
	"github.com/vladislavdragonenkov/oms-returns/internal/service/notify"
)

type paymentNotifierMock struct {
	mock.Mock
}

func (m *paymentNotifierMock) NotifyOrderCreated(event domain.OrderCreatedEvent) error {
	return m.Called(event).Error(0)
}

type refundNotifierMock struct {
	mock.Mock
}

func (m *refundNotifierMock) RequestRefund(event domain.ItemReturnedEvent) error {
	return m.Called(event).Error(0)
}

func TestDispatcher_OrderCreatedGoesToPayments(t *testing.T) {
	payments := &paymentNotifierMock{}
	refunds := &refundNotifierMock{}
	payments.On("NotifyOrderCreated", domain.OrderCreatedEvent{OrderID: 3, ProductIDs: []int64{1, 2}}).Return(nil).Once()

	order, err := domain.NewOrder([]int64{1, 2})
	require.NoError(t, err)
	order.ID = 3
	msg, err := domain.NewOrderCreatedMessage(order)
	require.NoError(t, err)

	require.NoError(t, notify.NewDispatcher(payments, refunds).Publish(msg))

	payments.AssertExpectations(t)
	refunds.AssertNotCalled(t, "RequestRefund", mock.Anything)
}

func TestDispatcher_ItemReturnedGoesToRefunds(t *testing.T) {
	payments := &paymentNotifierMock{}
	refunds := &refundNotifierMock{}
	refundErr := errors.New("refund system unavailable")
	refunds.On("RequestRefund", domain.ItemReturnedEvent{OrderID: 3, ProductID: 5}).Return(refundErr).Once()

	msg, err := domain.NewItemReturnedMessage(3, 5)
	require.NoError(t, err)

	err = notify.NewDispatcher(payments, refunds).Publish(msg)
	require.ErrorIs(t, err, refundErr)

	refunds.AssertExpectations(t)
	payments.AssertNotCalled(t, "NotifyOrderCreated", mock.Anything)
}

func TestDispatcher_UnknownEventType(t *testing.T) {
	dispatcher := notify.NewDispatcher(&paymentNotifierMock{}, &refundNotifierMock{})

	err := dispatcher.Publish(domain.OutboxMessage{EventType: "order.deleted", Payload: []byte(`{}`)})
	require.ErrorIs(t, err, domain.ErrUnknownEventType)
	assert.Contains(t, err.Error(), "order.deleted")
}

func TestDispatcher_MalformedPayload(t *testing.T) {
	dispatcher := notify.NewDispatcher(&paymentNotifierMock{}, &refundNotifierMock{})

	err := dispatcher.Publish(domain.OutboxMessage{EventType: domain.EventTypeOrderItemReturned, Payload: []byte(`{`)})
	require.ErrorIs(t, err, domain.ErrMalformedPayload)
	assert.NotErrorIs(t, err, domain.ErrUnknownEventType)
	assert.True(t, domain.IsUndeliverable(err))
}
