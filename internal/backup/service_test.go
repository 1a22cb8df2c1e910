package backup_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/backup"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
	"github.com/watermartph/watermart/internal/testutil"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	srcPath := filepath.Join(t.TempDir(), "src.db")
	src := testutil.NewTestDBAt(t, srcPath)
	srcOrders := order.NewService(src)
	srcCustomers := customer.NewService(src, srcOrders.Repo())
	srcBackup := backup.NewService(src, srcPath)

	c, err := srcCustomers.Create(ctx, "Jo Kitahara", "BLK 1 LOT 4, Kasamatsu")
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	o, err := srcOrders.Create(ctx, c.ID, 50, time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	var buf bytes.Buffer
	if err := srcBackup.WriteTo(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	// The wire document carries the version tag and both arrays.
	var doc backup.Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.Version != backup.DocumentVersion {
		t.Errorf("version = %q, want %q", doc.Version, backup.DocumentVersion)
	}
	if doc.ExportedAt.IsZero() {
		t.Error("expected exportedAt to be set")
	}

	// Import into a fresh store.
	dstPath := filepath.Join(t.TempDir(), "dst.db")
	dst := testutil.NewTestDBAt(t, dstPath)
	dstOrders := order.NewService(dst)
	dstCustomers := customer.NewService(dst, dstOrders.Repo())
	dstBackup := backup.NewService(dst, dstPath)

	if err := dstBackup.Import(ctx, &buf); err != nil {
		t.Fatalf("import: %v", err)
	}

	gotC, err := dstCustomers.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get imported customer: %v", err)
	}
	if gotC.Name != c.Name || gotC.Address != c.Address {
		t.Errorf("imported customer = %+v, want %+v", gotC, c)
	}
	if !gotC.CreatedAt.Equal(c.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", gotC.CreatedAt, c.CreatedAt)
	}

	gotO, err := dstOrders.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get imported order: %v", err)
	}
	if gotO.CustomerID != c.ID || gotO.Gallons != 50 || !gotO.Date.Equal(o.Date) {
		t.Errorf("imported order = %+v, want %+v", gotO, o)
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db := testutil.NewTestDBAt(t, dbPath)
	orderSvc := order.NewService(db)
	custSvc := customer.NewService(db, orderSvc.Repo())
	svc := backup.NewService(db, dbPath)

	old, err := custSvc.Create(ctx, "Old Customer", "Old Address")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := orderSvc.Create(ctx, old.ID, 30, time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}

	doc := `{
		"customers": [
			{"id": "imp-1", "name": "Imported", "address": "Imported Address",
			 "createdAt": "2025-01-01T00:00:00Z", "updatedAt": "2025-01-01T00:00:00Z"}
		],
		"orders": []
	}`
	if err := svc.Import(ctx, strings.NewReader(doc)); err != nil {
		t.Fatalf("import: %v", err)
	}

	customers, err := custSvc.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(customers) != 1 || customers[0].ID != "imp-1" {
		t.Errorf("expected only the imported customer, got %+v", customers)
	}

	orders, err := orderSvc.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all orders: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("expected prior orders cleared, got %d", len(orders))
	}
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db := testutil.NewTestDBAt(t, dbPath)
	orderSvc := order.NewService(db)
	custSvc := customer.NewService(db, orderSvc.Repo())
	svc := backup.NewService(db, dbPath)

	if _, err := custSvc.Create(ctx, "Survivor", "Still Here"); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"missing customers", `{"orders": []}`},
		{"missing orders", `{"customers": []}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Import(ctx, strings.NewReader(tc.body))
			if !errors.Is(err, apperr.ErrImportFormat) {
				t.Errorf("expected ErrImportFormat, got %v", err)
			}
		})
	}

	// Rejections must not touch the existing store.
	customers, err := custSvc.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "Survivor" {
		t.Errorf("expected existing data untouched, got %+v", customers)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC)
	if got := backup.Filename(now); got != "watermart-backup-2025-06-10.json" {
		t.Errorf("Filename = %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "live.db")
	db := testutil.NewTestDBAt(t, dbPath)
	orderSvc := order.NewService(db)
	custSvc := customer.NewService(db, orderSvc.Repo())
	svc := backup.NewService(db, dbPath)

	if _, err := custSvc.Create(ctx, "Someone", "Somewhere"); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if res.Size <= 0 {
		t.Errorf("expected non-empty snapshot, size = %d", res.Size)
	}
	if filepath.Dir(res.Path) != filepath.Join(filepath.Dir(dbPath), "backups") {
		t.Errorf("snapshot written to %q", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("stat snapshot: %v", err)
	}

	// The snapshot is itself a readable database with the data intact.
	snap := testutil.NewTestDBAt(t, res.Path)
	snapCustomers := customer.NewService(snap, order.New(snap))
	customers, err := snapCustomers.GetAll(ctx)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(customers) != 1 {
		t.Errorf("expected 1 customer in snapshot, got %d", len(customers))
	}
}
