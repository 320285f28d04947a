package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

const maxTxAttempts = 3

// SQLSTATE, после которых транзакцию можно безопасно повторить.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

type orderStore struct {
	db     *sql.DB
	logger *log.Entry
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore.
func NewOrderStore(store *Store) domain.OrderStore {
	return &orderStore{
		db:     store.DB(),
		logger: log.WithField("component", "postgres-order-store"),
	}
}

func (s *orderStore) InTx(ctx context.Context, level domain.IsolationLevel, fn func(tx domain.OrderTx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTx(ctx, level, fn)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		s.logger.WithError(err).WithField("attempt", attempt).Warn("transaction conflict, retrying")
	}
	return err
}

func (s *orderStore) runTx(ctx context.Context, level domain.IsolationLevel, fn func(tx domain.OrderTx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sqlIsolation(level)})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&orderTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *orderStore) FindAll(ctx context.Context) ([]domain.Order, error) {
	query, args, err := psql.
		Select("o.id", "o.issued", "i.id", "i.product_id", "i.returned").
		From("orders o").
		LeftJoin("order_items i ON i.order_id = o.id").
		OrderBy("o.id", "i.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find all query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			orderID   int64
			issued    bool
			itemID    sql.NullInt64
			productID sql.NullInt64
			returned  sql.NullBool
		)
		if err := rows.Scan(&orderID, &issued, &itemID, &productID, &returned); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		if len(orders) == 0 || orders[len(orders)-1].ID != orderID {
			orders = append(orders, domain.Order{ID: orderID, Issued: issued})
		}
		if !itemID.Valid {
			continue
		}
		last := &orders[len(orders)-1]
		last.Items = append(last.Items, domain.OrderItem{
			ID:        itemID.Int64,
			OrderID:   orderID,
			ProductID: productID.Int64,
			Returned:  returned.Bool,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) Save(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return domain.ErrProductIDsEmpty
	}

	query, args, err := psql.Insert("orders").
		Columns("issued").
		Values(order.Issued).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order: %w", err)
	}
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&order.ID); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		query, args, err := psql.Insert("order_items").
			Columns("order_id", "product_id", "returned").
			Values(item.OrderID, item.ProductID, item.Returned).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert order item: %w", err)
		}
		if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&item.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (t *orderTx) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	query, args, err := psql.Select("id", "issued").
		From("orders").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return domain.Order{}, fmt.Errorf("build select order: %w", err)
	}

	var order domain.Order
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&order.ID, &order.Issued); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := t.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (t *orderTx) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query, args, err := psql.Select("id", "order_id", "product_id", "returned").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Returned); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (t *orderTx) MarkItemReturned(ctx context.Context, itemID int64) error {
	affected, err := t.exec(ctx, psql.Update("order_items").
		Set("returned", true).
		Where(sq.Eq{"id": itemID}))
	if err != nil {
		return fmt.Errorf("mark item returned: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order item %d not found", itemID)
	}
	return nil
}

func (t *orderTx) MarkIssued(ctx context.Context, orderID int64) error {
	affected, err := t.exec(ctx, psql.Update("orders").
		Set("issued", true).
		Where(sq.Eq{"id": orderID}))
	if err != nil {
		return fmt.Errorf("mark order issued: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (t *orderTx) NotReturnedProductIDs(ctx context.Context, orderID int64) ([]int64, error) {
	query, args, err := psql.Select("product_id").
		From("order_items").
		Where(sq.Eq{"order_id": orderID, "returned": false}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select not returned: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select not returned products: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}
	return ids, nil
}

// Delete удаляет заказ; позиции удаляются каскадно (ON DELETE CASCADE).
func (t *orderTx) Delete(ctx context.Context, orderID int64) error {
	affected, err := t.exec(ctx, psql.Delete("orders").Where(sq.Eq{"id": orderID}))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (t *orderTx) Enqueue(ctx context.Context, msg domain.OutboxMessage) error {
	_, err := insertOutboxMessage(ctx, t.tx, msg)
	return err
}

func (t *orderTx) exec(ctx context.Context, builder sq.Sqlizer) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func sqlIsolation(level domain.IsolationLevel) sql.IsolationLevel {
	switch level {
	case domain.IsolationRepeatableRead:
		return sql.LevelRepeatableRead
	default:
		return sql.LevelReadCommitted
	}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

var (
	_ domain.OrderStore = (*orderStore)(nil)
	_ domain.OrderTx    = (*orderTx)(nil)
)
