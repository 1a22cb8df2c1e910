// Package backup moves the whole store in and out of the process: a JSON
// document for user-facing export/import and a SQLite snapshot for
// operational backups.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
)

// DocumentVersion tags exported documents so future imports can branch on
// format changes.
const DocumentVersion = "1.0"

// Document is the export file shape.
type Document struct {
	Customers  []customer.Customer `json:"customers"`
	Orders     []order.Order       `json:"orders"`
	ExportedAt time.Time           `json:"exportedAt"`
	Version    string              `json:"version"`
}

// importDocument uses pointers so a missing array is distinguishable from
// an empty one; both arrays must be present for a valid backup.
type importDocument struct {
	Customers *[]customer.Customer `json:"customers"`
	Orders    *[]order.Order       `json:"orders"`
}

type Service struct {
	db        *sqlx.DB
	dbPath    string
	customers customer.Repository
	orders    order.Repository
}

func NewService(db *sqlx.DB, dbPath string) *Service {
	return &Service{
		db:        db,
		dbPath:    dbPath,
		customers: customer.New(db),
		orders:    order.New(db),
	}
}

// Filename returns the suggested download name for an export taken now.
func Filename(now time.Time) string {
	return "watermart-backup-" + now.Format("2006-01-02") + ".json"
}

// Export serializes the entire customer and order collections plus a
// version tag.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	customers, err := s.customers.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &Document{
		Customers:  customers,
		Orders:     orders,
		ExportedAt: time.Now(),
		Version:    DocumentVersion,
	}, nil
}

// WriteTo exports the store as indented JSON to w.
func (s *Service) WriteTo(ctx context.Context, w io.Writer) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Import parses a backup document and atomically replaces the entire
// store contents. Validation happens before the destructive clear step:
// a malformed document returns apperr.ErrImportFormat and leaves the
// existing data untouched. Existing data is never merged with.
func (s *Service) Import(ctx context.Context, r io.Reader) error {
	var doc importDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return apperr.ImportFormatf("parse backup: %v", err)
	}
	if doc.Customers == nil || doc.Orders == nil {
		return apperr.ImportFormatf("backup must contain 'customers' and 'orders' arrays")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	err = func() error {
		if err := s.orders.Clear(ctx, tx); err != nil {
			return err
		}
		if err := s.customers.Clear(ctx, tx); err != nil {
			return err
		}
		for i := range *doc.Customers {
			if err := s.customers.Create(ctx, tx, &(*doc.Customers)[i]); err != nil {
				return err
			}
		}
		for i := range *doc.Orders {
			if err := s.orders.Create(ctx, tx, &(*doc.Orders)[i]); err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SnapshotResult contains information about a completed snapshot backup.
type SnapshotResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// Snapshot writes a clean, consolidated copy of the database file into a
// backups directory next to the live database.
func (s *Service) Snapshot(ctx context.Context) (*SnapshotResult, error) {
	backupDir := filepath.Join(filepath.Dir(s.dbPath), "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	filename := time.Now().Format("2006-01-02_15.04.05") + "_watermart.db"
	backupPath := filepath.Join(backupDir, filename)

	// VACUUM INTO produces a consistent copy without blocking writers.
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, backupPath); err != nil {
		return nil, fmt.Errorf("vacuum into backup: %w", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	return &SnapshotResult{
		Filename: filename,
		Path:     backupPath,
		Size:     info.Size(),
	}, nil
}
