package domain

import "context"

// IsolationLevel задаёт уровень изоляции транзакции хранилища.
type IsolationLevel int

const (
	// IsolationReadCommitted достаточно для возвратов и выдачи: заказ блокируется при чтении.
	IsolationReadCommitted IsolationLevel = iota
	// IsolationRepeatableRead используется для создания заказа, чтобы не пересекаться с чтением списка.
	IsolationRepeatableRead
)

// OrderStore описывает требования к хранилищу заказов.
type OrderStore interface {
	// InTx выполняет fn в одной транзакции: commit при nil, rollback при ошибке или панике.
	InTx(ctx context.Context, level IsolationLevel, fn func(tx OrderTx) error) error
	// FindAll возвращает все заказы с позициями, по возрастанию ID.
	FindAll(ctx context.Context) ([]Order, error)
}

// OrderTx — операции хранилища внутри открытой транзакции.
type OrderTx interface {
	// Save сохраняет новый заказ вместе со всеми позициями и проставляет им ID.
	Save(ctx context.Context, order *Order) error
	// FindByID возвращает заказ с позициями (по возрастанию ID) или ErrOrderNotFound.
	// Заказ остаётся заблокированным до конца транзакции.
	FindByID(ctx context.Context, id int64) (Order, error)
	// MarkItemReturned помечает позицию как возвращённую.
	MarkItemReturned(ctx context.Context, itemID int64) error
	// MarkIssued помечает заказ как выданный.
	MarkIssued(ctx context.Context, orderID int64) error
	// NotReturnedProductIDs возвращает товары невозвращённых позиций заказа.
	NotReturnedProductIDs(ctx context.Context, orderID int64) ([]int64, error)
	// Delete удаляет заказ вместе с позициями.
	Delete(ctx context.Context, orderID int64) error
	// Enqueue кладёт уведомление в outbox в рамках той же транзакции.
	Enqueue(ctx context.Context, msg OutboxMessage) error
}
