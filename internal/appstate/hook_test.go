package appstate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/appstate"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
	"github.com/watermartph/watermart/internal/testutil"
)

func newHook(t *testing.T) (context.Context, *appstate.Hook) {
	t.Helper()
	db := testutil.NewTestDB(t)
	orderSvc := order.NewService(db)
	custSvc := customer.NewService(db, orderSvc.Repo())
	return context.Background(), appstate.NewHook(custSvc, orderSvc)
}

func TestHookStartLoadsSnapshot(t *testing.T) {
	_, h := newHook(t)

	if !h.IsLoading() {
		t.Error("expected loading=true before first refresh")
	}

	h.Start(0)
	defer h.Close()

	if h.IsLoading() {
		t.Error("expected loading=false after initial load")
	}
	if h.Err() != "" {
		t.Errorf("unexpected error state %q", h.Err())
	}
	if got := h.Customers(); len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d customers", len(got))
	}
}

func TestHookAddCustomerWithInitialOrder(t *testing.T) {
	ctx, h := newHook(t)
	h.Start(0)
	defer h.Close()

	c, err := h.AddCustomer(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu", 50)
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}

	view := h.Customers()
	if len(view) != 1 {
		t.Fatalf("expected snapshot with 1 customer, got %d", len(view))
	}
	if view[0].ID != c.ID || view[0].Name != "Jo Kitahara" {
		t.Errorf("snapshot customer = %+v", view[0])
	}
	if len(view[0].Orders) != 1 || view[0].Orders[0].Gallons != 50 {
		t.Errorf("expected one 50-gallon seed order, got %+v", view[0].Orders)
	}
}

func TestHookAddCustomerWithoutInitialOrder(t *testing.T) {
	ctx, h := newHook(t)
	h.Start(0)
	defer h.Close()

	if _, err := h.AddCustomer(ctx, "Jane Doe", "BLK 3 LOT 5, Somewhere", 0); err != nil {
		t.Fatalf("add customer: %v", err)
	}

	view := h.Customers()
	if len(view) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(view))
	}
	if len(view[0].Orders) != 0 {
		t.Errorf("expected no seed order, got %+v", view[0].Orders)
	}
}

func TestHookMutationsKeepSnapshotCurrent(t *testing.T) {
	ctx, h := newHook(t)
	h.Start(0)
	defer h.Close()

	c, err := h.AddCustomer(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu", 0)
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	o, err := h.AddOrder(ctx, c.ID, 30)
	if err != nil {
		t.Fatalf("add order: %v", err)
	}
	if len(h.Customers()[0].Orders) != 1 {
		t.Fatal("expected snapshot to include the new order")
	}

	gallons := 45
	if _, err := h.UpdateOrder(ctx, o.ID, order.UpdateParams{Gallons: &gallons}); err != nil {
		t.Fatalf("update order: %v", err)
	}
	if got := h.Customers()[0].Orders[0].Gallons; got != 45 {
		t.Errorf("snapshot gallons = %d, want 45", got)
	}

	name := "Jo K."
	if _, err := h.UpdateCustomer(ctx, c.ID, customer.UpdateParams{Name: &name}); err != nil {
		t.Fatalf("update customer: %v", err)
	}
	if got := h.Customers()[0].Name; got != "Jo K." {
		t.Errorf("snapshot name = %q, want %q", got, "Jo K.")
	}

	if err := h.DeleteOrder(ctx, o.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if len(h.Customers()[0].Orders) != 0 {
		t.Error("expected order removed from snapshot")
	}

	if err := h.DeleteCustomer(ctx, c.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	if len(h.Customers()) != 0 {
		t.Error("expected customer removed from snapshot")
	}
}

func TestHookValidationErrorsPassThrough(t *testing.T) {
	ctx, h := newHook(t)
	h.Start(0)
	defer h.Close()

	if _, err := h.AddCustomer(ctx, "", "No Name", 0); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := h.AddOrder(ctx, "cust-1", 0); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestHookSearchCustomers(t *testing.T) {
	ctx, h := newHook(t)
	h.Start(0)
	defer h.Close()

	if _, err := h.AddCustomer(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu", 25); err != nil {
		t.Fatalf("add customer: %v", err)
	}
	if _, err := h.AddCustomer(ctx, "Jane Doe", "BLK 3 LOT 5, Somewhere", 0); err != nil {
		t.Fatalf("add customer: %v", err)
	}

	got, err := h.SearchCustomers(ctx, "kitahara")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Jo Kitahara" {
		t.Fatalf("search result = %+v", got)
	}
	if len(got[0].Orders) != 1 {
		t.Errorf("expected order history attached, got %+v", got[0].Orders)
	}
}

func TestHookTotals(t *testing.T) {
	ctx, h := newHook(t)
	h.Start(0)
	defer h.Close()

	c, err := h.AddCustomer(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu", 0)
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	if _, err := h.AddOrder(ctx, c.ID, 50); err != nil {
		t.Fatalf("add order: %v", err)
	}

	today, err := h.TodayTotal(ctx)
	if err != nil {
		t.Fatalf("today total: %v", err)
	}
	if today != 50 {
		t.Errorf("today total = %d, want 50", today)
	}

	month, err := h.MonthlyTotal(ctx)
	if err != nil {
		t.Fatalf("monthly total: %v", err)
	}
	if month < today {
		t.Errorf("monthly total %d below today's %d", month, today)
	}
}

func TestHookScheduledRefresh(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	orderSvc := order.NewService(db)
	custSvc := customer.NewService(db, orderSvc.Repo())

	h := appstate.NewHook(custSvc, orderSvc)
	h.Start(time.Second)
	defer h.Close()

	// Write behind the hook's back; only the scheduled refresh can pick
	// it up.
	if _, err := custSvc.Create(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(h.Customers()) != 0 {
		t.Fatal("expected the stale snapshot before the scheduled refresh")
	}

	deadline := time.After(3 * time.Second)
	for len(h.Customers()) != 1 {
		select {
		case <-deadline:
			t.Fatal("snapshot never caught up")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
