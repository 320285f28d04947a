package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// orderStoreInMemory реализует OrderStore в памяти процесса.
// Все транзакции выполняются под одним мьютексом, изменения копятся в транзакции
// и применяются только при commit.
type orderStoreInMemory struct {
	mu         sync.Mutex
	orders     map[int64]domain.Order
	itemOwner  map[int64]int64
	nextOrder  int64
	nextItem   int64
	outboxRepo domain.OutboxRepository
}

// NewOrderStore возвращает in-memory хранилище для локальной разработки и тестов.
// outboxRepo может быть nil, тогда уведомления из транзакций отбрасываются.
func NewOrderStore(outboxRepo domain.OutboxRepository) domain.OrderStore {
	return &orderStoreInMemory{
		orders:     make(map[int64]domain.Order),
		itemOwner:  make(map[int64]int64),
		outboxRepo: outboxRepo,
	}
}

// InTx выполняет fn атомарно. Уровень изоляции не важен: транзакции сериализованы.
func (s *orderStoreInMemory) InTx(ctx context.Context, _ domain.IsolationLevel, fn func(tx domain.OrderTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:   s,
		staged:  make(map[int64]*domain.Order),
		deleted: make(map[int64]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// FindAll возвращает копии всех заказов по возрастанию ID.
func (s *orderStoreInMemory) FindAll(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		result = append(result, cloneOrder(order))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

type memoryTx struct {
	store   *orderStoreInMemory
	staged  map[int64]*domain.Order
	deleted map[int64]bool
	pending []domain.OutboxMessage
}

func (tx *memoryTx) Save(_ context.Context, order *domain.Order) error {
	if order == nil || len(order.Items) == 0 {
		return domain.ErrProductIDsEmpty
	}

	tx.store.nextOrder++
	order.ID = tx.store.nextOrder
	for i := range order.Items {
		tx.store.nextItem++
		order.Items[i].ID = tx.store.nextItem
		order.Items[i].OrderID = order.ID
	}

	staged := cloneOrder(*order)
	tx.staged[order.ID] = &staged
	return nil
}

func (tx *memoryTx) FindByID(_ context.Context, id int64) (domain.Order, error) {
	order, ok := tx.lookup(id)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(*order), nil
}

func (tx *memoryTx) MarkItemReturned(_ context.Context, itemID int64) error {
	orderID, ok := tx.ownerOf(itemID)
	if !ok {
		return fmt.Errorf("order item %d not found", itemID)
	}
	order, ok := tx.lookup(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items[i].Returned = true
			return nil
		}
	}
	return fmt.Errorf("order item %d not found", itemID)
}

func (tx *memoryTx) MarkIssued(_ context.Context, orderID int64) error {
	order, ok := tx.lookup(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Issued = true
	return nil
}

func (tx *memoryTx) NotReturnedProductIDs(_ context.Context, orderID int64) ([]int64, error) {
	order, ok := tx.lookup(orderID)
	if !ok {
		return []int64{}, nil
	}
	return order.NotReturnedProductIDs(), nil
}

func (tx *memoryTx) Delete(_ context.Context, orderID int64) error {
	if _, ok := tx.lookup(orderID); !ok {
		return domain.ErrOrderNotFound
	}
	delete(tx.staged, orderID)
	tx.deleted[orderID] = true
	return nil
}

func (tx *memoryTx) Enqueue(_ context.Context, msg domain.OutboxMessage) error {
	tx.pending = append(tx.pending, msg)
	return nil
}

// lookup возвращает изменяемую копию заказа, видимую в транзакции.
func (tx *memoryTx) lookup(id int64) (*domain.Order, bool) {
	if tx.deleted[id] {
		return nil, false
	}
	if order, ok := tx.staged[id]; ok {
		return order, true
	}
	committed, ok := tx.store.orders[id]
	if !ok {
		return nil, false
	}
	staged := cloneOrder(committed)
	tx.staged[id] = &staged
	return &staged, true
}

func (tx *memoryTx) ownerOf(itemID int64) (int64, bool) {
	for id, order := range tx.staged {
		for _, item := range order.Items {
			if item.ID == itemID {
				return id, true
			}
		}
	}
	orderID, ok := tx.store.itemOwner[itemID]
	return orderID, ok
}

func (tx *memoryTx) commit() error {
	s := tx.store
	for id := range tx.deleted {
		if order, ok := s.orders[id]; ok {
			for _, item := range order.Items {
				delete(s.itemOwner, item.ID)
			}
		}
		delete(s.orders, id)
	}
	for id, order := range tx.staged {
		s.orders[id] = *order
		for _, item := range order.Items {
			s.itemOwner[item.ID] = id
		}
	}

	if s.outboxRepo == nil {
		return nil
	}
	for _, msg := range tx.pending {
		if _, err := s.outboxRepo.Enqueue(msg); err != nil {
			return fmt.Errorf("enqueue outbox message: %w", err)
		}
	}
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
var _ domain.OrderTx = (*memoryTx)(nil)
