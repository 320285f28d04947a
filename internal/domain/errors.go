package domain

import "errors"

// InvalidArgumentError — единственный вид бизнес-ошибки сервиса.
// Сообщение отдаётся клиенту как есть, поэтому тексты стабильны.
type InvalidArgumentError struct {
	msg string
}

// NewInvalidArgument создаёт бизнес-ошибку с заданным сообщением.
func NewInvalidArgument(msg string) *InvalidArgumentError {
	return &InvalidArgumentError{msg: msg}
}

func (e *InvalidArgumentError) Error() string {
	return e.msg
}

var (
	// ErrProductIDsEmpty: заказ без позиций создать нельзя.
	ErrProductIDsEmpty = NewInvalidArgument("Product ids can not be empty")
	// ErrProductIDRequired: в запросе на возврат не передан товар.
	ErrProductIDRequired = NewInvalidArgument("Product id can not be null")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = NewInvalidArgument("Order not found")
	// ErrOrderAlreadyIssued — заказ уже выдан, возвраты и повторная выдача запрещены.
	ErrOrderAlreadyIssued = NewInvalidArgument("Order was already issued")
	// ErrProductAlreadyReturned — все позиции с этим товаром уже возвращены.
	ErrProductAlreadyReturned = NewInvalidArgument("Product already returned")
	// ErrProductNotInOrder — товара нет среди позиций заказа.
	ErrProductNotInOrder = NewInvalidArgument("Product not found in order")

	// ErrOutboxPublish возвращается при ошибке публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrUnknownEventType — outbox-сообщение с типом, который некому доставить.
	ErrUnknownEventType = errors.New("unknown outbox event type")
	// ErrMalformedPayload: payload outbox-сообщения не декодируется в событие своего типа.
	ErrMalformedPayload = errors.New("malformed outbox payload")
	// ErrPublisherUnavailable: получатель уведомлений временно недоступен, сообщение остаётся в очереди.
	ErrPublisherUnavailable = errors.New("notification publisher is unavailable")
)

// IsUndeliverable сообщает, что сообщение outbox не будет доставлено ни при каком повторе.
func IsUndeliverable(err error) bool {
	return errors.Is(err, ErrUnknownEventType) || errors.Is(err, ErrMalformedPayload)
}

// IsInvalidArgument проверяет, является ли ошибка бизнес-ошибкой (в том числе обёрнутой).
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}
