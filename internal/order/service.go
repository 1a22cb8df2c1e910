package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/watermartph/watermart/internal/apperr"
)

type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
	}
}

// Repo exposes the underlying repository for callers that compose
// transactions across entities (customer cascade delete, backup import).
func (s *Service) Repo() Repository {
	return s.repo
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Service) GetAll(ctx context.Context) ([]Order, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// ByCustomer returns all orders for a customer in insertion order.
func (s *Service) ByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.repo.ByCustomer(ctx, customerID)
}

// InRange returns orders whose date falls in [start, end] inclusive.
func (s *Service) InRange(ctx context.Context, start, end time.Time) ([]Order, error) {
	return s.repo.InRange(ctx, start, end)
}

// Create persists a new order. Gallons must be a positive whole number.
// The referenced customer is deliberately NOT checked for existence:
// an order may reference a customer that was deleted or never created.
func (s *Service) Create(ctx context.Context, customerID string, gallons int, date time.Time) (*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.Validationf("order customer id is required")
	}
	if gallons < 1 {
		return nil, apperr.Validationf("order gallons must be at least 1, got %d", gallons)
	}
	if date.IsZero() {
		return nil, apperr.Validationf("order date is required")
	}

	o := &Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Gallons:    gallons,
		Date:       date,
		CreatedAt:  time.Now(),
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, o.ID)
}

// Update merges the provided fields into an existing order.
// Returns apperr.ErrNotFound if the id does not exist.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Gallons != nil {
		if *p.Gallons < 1 {
			return nil, apperr.Validationf("order gallons must be at least 1, got %d", *p.Gallons)
		}
		o.Gallons = *p.Gallons
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			return nil, apperr.Validationf("order date is required")
		}
		o.Date = *p.Date
	}

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

// DailyTotal sums gallons over orders dated on or after local midnight
// of the given day.
func (s *Service) DailyTotal(ctx context.Context, now time.Time) (int, error) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return s.repo.SumGallonsSince(ctx, midnight)
}

// MonthlyTotal sums gallons over orders dated on or after the first day
// of the current calendar month at local midnight.
func (s *Service) MonthlyTotal(ctx context.Context, now time.Time) (int, error) {
	y, m, _ := now.Date()
	firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return s.repo.SumGallonsSince(ctx, firstOfMonth)
}
