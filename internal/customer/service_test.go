package customer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
	"github.com/watermartph/watermart/internal/testutil"
)

func TestCustomerLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	svc := customer.NewService(db, order.New(db))

	// Create
	created, err := svc.Create(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected createdAt == updatedAt on a fresh record, got %v / %v",
			created.CreatedAt, created.UpdatedAt)
	}

	// Get
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Jo Kitahara" {
		t.Errorf("expected name %q, got %q", "Jo Kitahara", got.Name)
	}
	if got.Address != "BLK 1 LOT 4, Kasamatsu" {
		t.Errorf("expected address %q, got %q", "BLK 1 LOT 4, Kasamatsu", got.Address)
	}

	// Update bumps updatedAt, keeps createdAt and id
	time.Sleep(2 * time.Millisecond)
	newName := "Jo K."
	updated, err := svc.Update(ctx, created.ID, customer.UpdateParams{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Jo K." {
		t.Errorf("expected updated name %q, got %q", "Jo K.", updated.Name)
	}
	if updated.Address != got.Address {
		t.Errorf("expected address unchanged, got %q", updated.Address)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt must not change on update")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("expected updatedAt to advance, got %v", updated.UpdatedAt)
	}

	// Delete
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.Get(ctx, created.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCustomerCreateValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	svc := customer.NewService(db, order.New(db))

	cases := []struct {
		name    string
		address string
	}{
		{"", "Some Address"},
		{"   ", "Some Address"},
		{"Some Name", ""},
		{"Some Name", "  "},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, tc.name, tc.address)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Create(%q, %q): expected ErrValidation, got %v", tc.name, tc.address, err)
		}
	}

	if n, err := svc.Count(ctx); err != nil || n != 0 {
		t.Errorf("expected no customers persisted, got %d (err %v)", n, err)
	}
}

func TestCustomerUpdateNotFound(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	svc := customer.NewService(db, order.New(db))

	name := "Anyone"
	_, err := svc.Update(ctx, "no-such-id", customer.UpdateParams{Name: &name})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestCascadeDeleteCustomer verifies that deleting a customer removes every
// order referencing it while leaving other customers' orders intact.
func TestCascadeDeleteCustomer(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	orderSvc := order.NewService(db)
	svc := customer.NewService(db, orderSvc.Repo())

	c1, err := svc.Create(ctx, "Customer One", "Address One")
	if err != nil {
		t.Fatalf("create customer 1: %v", err)
	}
	c2, err := svc.Create(ctx, "Customer Two", "Address Two")
	if err != nil {
		t.Fatalf("create customer 2: %v", err)
	}

	now := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := orderSvc.Create(ctx, c1.ID, 50, now); err != nil {
			t.Fatalf("create order for customer 1: %v", err)
		}
	}
	if _, err := orderSvc.Create(ctx, c2.ID, 30, now); err != nil {
		t.Fatalf("create order for customer 2: %v", err)
	}

	if err := svc.Delete(ctx, c1.ID); err != nil {
		t.Fatalf("delete customer 1: %v", err)
	}

	remaining, err := orderSvc.ByCustomer(ctx, c1.ID)
	if err != nil {
		t.Fatalf("get customer 1 orders: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected 0 orders for deleted customer, got %d", len(remaining))
	}

	kept, err := orderSvc.ByCustomer(ctx, c2.ID)
	if err != nil {
		t.Fatalf("get customer 2 orders: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("expected customer 2's order to remain, got %d", len(kept))
	}
}

func TestSearchCustomers(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	svc := customer.NewService(db, order.New(db))

	if _, err := svc.Create(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "Jane Doe", "BLK 3 LOT 5, Somewhere"); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("blank query returns all customers", func(t *testing.T) {
		for _, q := range []string{"", "   "} {
			out, err := svc.Search(ctx, q)
			if err != nil {
				t.Fatalf("search %q: %v", q, err)
			}
			if len(out) != 2 {
				t.Errorf("search %q: expected 2 customers, got %d", q, len(out))
			}
		}
	})

	t.Run("matches name substrings case-insensitively", func(t *testing.T) {
		for _, q := range []string{"kitahara", "KITAHARA", "itaha"} {
			out, err := svc.Search(ctx, q)
			if err != nil {
				t.Fatalf("search %q: %v", q, err)
			}
			if len(out) != 1 || out[0].Name != "Jo Kitahara" {
				t.Errorf("search %q: expected Jo Kitahara, got %+v", q, out)
			}
		}
	})

	t.Run("matches address substrings", func(t *testing.T) {
		out, err := svc.Search(ctx, "somewhere")
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(out) != 1 || out[0].Name != "Jane Doe" {
			t.Errorf("expected Jane Doe via address match, got %+v", out)
		}
	})

	t.Run("matches across both fields", func(t *testing.T) {
		out, err := svc.Search(ctx, "blk")
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(out) != 2 {
			t.Errorf("expected both customers for %q, got %d", "blk", len(out))
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		out, err := svc.Search(ctx, "zzz")
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("expected no matches, got %d", len(out))
		}
	})
}
