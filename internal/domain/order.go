package domain

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID назначается хранилищем при сохранении заказа.
	ID int64
	// OrderID ссылается на заказ-владелец.
	OrderID int64
	// ProductID не проверяется по каталогу.
	ProductID int64
	// Returned выставляется один раз и больше не сбрасывается.
	Returned bool
}

// Order агрегирует состояние заказа и его позиции.
// Позиции принадлежат только этому заказу и создаются вместе с ним.
type Order struct {
	ID     int64
	Issued bool
	Items  []OrderItem
}

// OrderSummary — проекция заказа для списка: только ещё не возвращённые товары.
type OrderSummary struct {
	OrderID               int64   `json:"orderId"`
	NonReturnedProductIDs []int64 `json:"nonReturnedProductIds"`
}

// NewOrder собирает новый заказ: по одной позиции на каждый переданный товар.
// Повторяющиеся товары становятся отдельными позициями.
func NewOrder(productIDs []int64) (Order, error) {
	if len(productIDs) == 0 {
		return Order{}, ErrProductIDsEmpty
	}

	items := make([]OrderItem, 0, len(productIDs))
	for _, productID := range productIDs {
		items = append(items, OrderItem{ProductID: productID})
	}

	return Order{Items: items}, nil
}

// ProductIDs возвращает идентификаторы товаров всех позиций заказа.
func (o *Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// NotReturnedProductIDs возвращает товары позиций, по которым ещё не оформлен возврат.
func (o *Order) NotReturnedProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if !item.Returned {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// Summary строит проекцию заказа для списка.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderID:               o.ID,
		NonReturnedProductIDs: o.NotReturnedProductIDs(),
	}
}

// ReturnableItem ищет позицию с товаром productID, которую ещё можно вернуть.
// Позиции просматриваются в порядке Items (хранилище отдаёт их по возрастанию ID),
// выбирается первая невозвращённая.
func (o *Order) ReturnableItem(productID int64) (*OrderItem, error) {
	if o.Issued {
		return nil, ErrOrderAlreadyIssued
	}

	matched := false
	for i := range o.Items {
		if o.Items[i].ProductID != productID {
			continue
		}
		matched = true
		if !o.Items[i].Returned {
			return &o.Items[i], nil
		}
	}

	if matched {
		return nil, ErrProductAlreadyReturned
	}
	return nil, ErrProductNotInOrder
}

// Issue переводит заказ в состояние "выдан".
func (o *Order) Issue() error {
	if o.Issued {
		return ErrOrderAlreadyIssued
	}
	o.Issued = true
	return nil
}
