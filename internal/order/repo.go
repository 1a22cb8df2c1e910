package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/sqlite"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	ByCustomer(ctx context.Context, customerID string) ([]Order, error)
	InRange(ctx context.Context, start, end time.Time) ([]Order, error)
	SumGallonsSince(ctx context.Context, cutoff time.Time) (int, error)
	Create(ctx context.Context, tx *sqlx.Tx, o *Order) error
	Update(ctx context.Context, tx *sqlx.Tx, o *Order) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error
	DeleteByCustomer(ctx context.Context, tx *sqlx.Tx, customerID string) error
	Clear(ctx context.Context, tx *sqlx.Tx) error
}

// orderRow is the storage shape: timestamps are unix milliseconds.
type orderRow struct {
	OrderID    string `db:"order_id"`
	CustomerID string `db:"customer_id"`
	Gallons    int    `db:"gallons"`
	OrderDate  int64  `db:"order_date"`
	CreatedAt  int64  `db:"created_at"`
}

func (r orderRow) toOrder() Order {
	return Order{
		ID:         r.OrderID,
		CustomerID: r.CustomerID,
		Gallons:    r.Gallons,
		Date:       time.UnixMilli(r.OrderDate),
		CreatedAt:  time.UnixMilli(r.CreatedAt),
	}
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) selectOrders(ctx context.Context, op, query string, args ...any) ([]Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, sqlite.Wrap(op, err)
	}
	out := make([]Order, len(rows))
	for i, row := range rows {
		out[i] = row.toOrder()
	}
	return out, nil
}

func (r *repo) GetAll(ctx context.Context) ([]Order, error) {
	return r.selectOrders(ctx, "get all orders", getAllOrdersSQL)
}

func (r *repo) Get(ctx context.Context, id string) (*Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, getOrderSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("order %q", id)
	}
	if err != nil {
		return nil, sqlite.Wrap("get order", err)
	}
	o := row.toOrder()
	return &o, nil
}

func (r *repo) ByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return r.selectOrders(ctx, "get customer orders", getCustomerOrdersSQL, customerID)
}

func (r *repo) InRange(ctx context.Context, start, end time.Time) ([]Order, error) {
	return r.selectOrders(ctx, "get orders in range", ordersInRangeSQL,
		start.UnixMilli(), end.UnixMilli())
}

func (r *repo) SumGallonsSince(ctx context.Context, cutoff time.Time) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, sumGallonsSinceSQL, cutoff.UnixMilli())
	if err != nil {
		return 0, sqlite.Wrap("sum gallons", err)
	}
	return total, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, o *Order) error {
	_, err := tx.ExecContext(ctx, createOrderSQL,
		o.ID,
		o.CustomerID,
		o.Gallons,
		o.Date.UnixMilli(),
		o.CreatedAt.UnixMilli(),
	)
	return sqlite.Wrap("create order", err)
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, o *Order) error {
	_, err := tx.ExecContext(ctx, updateOrderSQL,
		o.Gallons,
		o.Date.UnixMilli(),
		o.ID,
	)
	return sqlite.Wrap("update order", err)
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	_, err := tx.ExecContext(ctx, deleteOrderSQL, id)
	return sqlite.Wrap("delete order", err)
}

func (r *repo) DeleteByCustomer(ctx context.Context, tx *sqlx.Tx, customerID string) error {
	_, err := tx.ExecContext(ctx, deleteCustomerOrdersSQL, customerID)
	return sqlite.Wrap("delete customer orders", err)
}

func (r *repo) Clear(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, clearOrdersSQL)
	return sqlite.Wrap("clear orders", err)
}
