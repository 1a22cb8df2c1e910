package customer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/watermartph/watermart/internal/apperr"
)

// OrderPurger deletes every order belonging to a customer inside the
// caller's transaction. Satisfied by order.Repository; keeps cascade
// delete atomic without a foreign key constraint in the schema.
type OrderPurger interface {
	DeleteByCustomer(ctx context.Context, tx *sqlx.Tx, customerID string) error
}

type Service struct {
	repo   Repository
	orders OrderPurger
	db     *sqlx.DB
}

func NewService(db *sqlx.DB, orders OrderPurger) *Service {
	return &Service{
		db:     db,
		repo:   New(db),
		orders: orders,
	}
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

func (s *Service) GetAll(ctx context.Context) ([]Customer, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Create persists a new customer and returns the stored record.
// Name and address must be non-blank.
func (s *Service) Create(ctx context.Context, name, address string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validationf("customer name is required")
	}
	if strings.TrimSpace(address) == "" {
		return nil, apperr.Validationf("customer address is required")
	}

	now := time.Now()
	c := &Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, c.ID)
}

// Update merges the provided fields into an existing customer and bumps
// UpdatedAt. Returns apperr.ErrNotFound if the id does not exist.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*Customer, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, apperr.Validationf("customer name is required")
		}
		c.Name = *p.Name
	}
	if p.Address != nil {
		if strings.TrimSpace(*p.Address) == "" {
			return nil, apperr.Validationf("customer address is required")
		}
		c.Address = *p.Address
	}
	c.UpdatedAt = time.Now()

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Delete removes the customer together with every order referencing it.
// Both deletes happen in one transaction: a crash mid-operation cannot
// leave orphaned orders behind.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.orders.DeleteByCustomer(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

// Search returns customers whose name or address contains the query,
// case-insensitively. A blank query returns all customers. The match is
// a full scan filter, not an indexed prefix search.
func (s *Service) Search(ctx context.Context, query string) ([]Customer, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	out := make([]Customer, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Address), q) {
			out = append(out, c)
		}
	}
	return out, nil
}
