package customer

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
	GetAll(ctx context.Context) ([]Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, tx *sqlx.Tx, c *Customer) error
	Update(ctx context.Context, tx *sqlx.Tx, c *Customer) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error
	Clear(ctx context.Context, tx *sqlx.Tx) error
}

// customerRow is the storage shape: timestamps are unix milliseconds.
type customerRow struct {
	CustomerID   string `db:"customer_id"`
	CustomerName string `db:"customer_name"`
	Address      string `db:"address"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func (r customerRow) toCustomer() Customer {
	return Customer{
		ID:        r.CustomerID,
		Name:      r.CustomerName,
		Address:   r.Address,
		CreatedAt: time.UnixMilli(r.CreatedAt),
		UpdatedAt: time.UnixMilli(r.UpdatedAt),
	}
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetAll(ctx context.Context) ([]Customer, error) {
	var rows []customerRow
	if err := r.db.SelectContext(ctx, &rows, getAllCustomersSQL); err != nil {
		return nil, sqlite.Wrap("get all customers", err)
	}
	out := make([]Customer, len(rows))
	for i, row := range rows {
		out[i] = row.toCustomer()
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id string) (*Customer, error) {
	var row customerRow
	err := r.db.GetContext(ctx, &row, getCustomerSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("customer %q", id)
	}
	if err != nil {
		return nil, sqlite.Wrap("get customer", err)
	}
	c := row.toCustomer()
	return &c, nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, countCustomersSQL); err != nil {
		return 0, sqlite.Wrap("count customers", err)
	}
	return n, nil
}

func (r *repo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, customerExistsSQL, id); err != nil {
		return false, sqlite.Wrap("customer exists", err)
	}
	return exists, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, c *Customer) error {
	_, err := tx.ExecContext(ctx, createCustomerSQL,
		c.ID,
		c.Name,
		c.Address,
		c.CreatedAt.UnixMilli(),
		c.UpdatedAt.UnixMilli(),
	)
	return sqlite.Wrap("create customer", err)
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, c *Customer) error {
	_, err := tx.ExecContext(ctx, updateCustomerSQL,
		c.Name,
		c.Address,
		c.UpdatedAt.UnixMilli(),
		c.ID,
	)
	return sqlite.Wrap("update customer", err)
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	_, err := tx.ExecContext(ctx, deleteCustomerSQL, id)
	return sqlite.Wrap("delete customer", err)
}

func (r *repo) Clear(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, clearCustomersSQL)
	return sqlite.Wrap("clear customers", err)
}
