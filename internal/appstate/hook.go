// Package appstate orchestrates the data access and analytics layers into
// a single in-memory view consumed by the presentation layer. It caches a
// customers-with-orders snapshot, refreshes it after every mutation and on
// a recurring schedule, and converts load failures into a user-visible
// error message instead of crashing the process.
package appstate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
)

// OrderView is the order shape the presentation layer consumes.
type OrderView struct {
	ID      string    `json:"id"`
	Gallons int       `json:"gallons"`
	Date    time.Time `json:"date"`
}

// CustomerView is a customer with its order history embedded.
type CustomerView struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Orders  []OrderView `json:"orders"`
}

type Hook struct {
	customers *customer.Service
	orders    *order.Service

	cron *cron.Cron

	mu      sync.RWMutex
	view    []CustomerView
	loading bool
	errMsg  string
}

func NewHook(customers *customer.Service, orders *order.Service) *Hook {
	return &Hook{
		customers: customers,
		orders:    orders,
		loading:   true,
	}
}

// Start performs the initial load and, when refreshEvery is positive,
// schedules a recurring background refresh. A failed initial load is
// recorded in the error state rather than aborting startup.
func (h *Hook) Start(refreshEvery time.Duration) {
	if err := h.Refresh(context.Background()); err != nil {
		log.Printf("initial customer load failed: %v", err)
	}

	if refreshEvery <= 0 {
		return
	}

	h.cron = cron.New()
	h.cron.AddFunc(fmt.Sprintf("@every %s", refreshEvery), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Refresh(ctx); err != nil {
			log.Printf("scheduled refresh failed: %v", err)
		}
	})
	h.cron.Start()
}

// Close cancels the recurring refresh and waits for an in-flight run to
// finish, so no timer outlives the hook.
func (h *Hook) Close() {
	if h.cron != nil {
		<-h.cron.Stop().Done()
	}
}

// Customers returns the current snapshot.
func (h *Hook) Customers() []CustomerView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]CustomerView, len(h.view))
	copy(out, h.view)
	return out
}

// IsLoading reports whether a snapshot load is in progress.
func (h *Hook) IsLoading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// Err returns the user-visible message of the last failed load, or "".
func (h *Hook) Err() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.errMsg
}

// Refresh rebuilds the customers-with-orders snapshot from the store.
func (h *Hook) Refresh(ctx context.Context) error {
	h.mu.Lock()
	h.loading = true
	h.mu.Unlock()

	view, err := h.buildView(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if err != nil {
		h.errMsg = "Failed to load customers"
		return err
	}
	h.view = view
	h.errMsg = ""
	return nil
}

func (h *Hook) buildView(ctx context.Context) ([]CustomerView, error) {
	customers, err := h.customers.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	view := make([]CustomerView, 0, len(customers))
	for _, c := range customers {
		cv, err := h.customerView(ctx, c)
		if err != nil {
			return nil, err
		}
		view = append(view, cv)
	}
	return view, nil
}

func (h *Hook) customerView(ctx context.Context, c customer.Customer) (CustomerView, error) {
	orders, err := h.orders.ByCustomer(ctx, c.ID)
	if err != nil {
		return CustomerView{}, err
	}

	ov := make([]OrderView, len(orders))
	for i, o := range orders {
		ov[i] = OrderView{ID: o.ID, Gallons: o.Gallons, Date: o.Date}
	}
	return CustomerView{ID: c.ID, Name: c.Name, Address: c.Address, Orders: ov}, nil
}

// AddCustomer creates a customer, optionally paired with a seed order for
// the initial delivery, and refreshes the snapshot.
func (h *Hook) AddCustomer(ctx context.Context, name, address string, initialGallons int) (*customer.Customer, error) {
	c, err := h.customers.Create(ctx, name, address)
	if err != nil {
		return nil, err
	}

	if initialGallons > 0 {
		if _, err := h.orders.Create(ctx, c.ID, initialGallons, time.Now()); err != nil {
			return nil, err
		}
	}

	h.refreshAfterWrite(ctx)
	return c, nil
}

// AddOrder records a delivery of the given size dated now.
func (h *Hook) AddOrder(ctx context.Context, customerID string, gallons int) (*order.Order, error) {
	o, err := h.orders.Create(ctx, customerID, gallons, time.Now())
	if err != nil {
		return nil, err
	}
	h.refreshAfterWrite(ctx)
	return o, nil
}

func (h *Hook) UpdateCustomer(ctx context.Context, id string, p customer.UpdateParams) (*customer.Customer, error) {
	c, err := h.customers.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	h.refreshAfterWrite(ctx)
	return c, nil
}

func (h *Hook) DeleteCustomer(ctx context.Context, id string) error {
	if err := h.customers.Delete(ctx, id); err != nil {
		return err
	}
	h.refreshAfterWrite(ctx)
	return nil
}

func (h *Hook) UpdateOrder(ctx context.Context, id string, p order.UpdateParams) (*order.Order, error) {
	o, err := h.orders.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	h.refreshAfterWrite(ctx)
	return o, nil
}

func (h *Hook) DeleteOrder(ctx context.Context, id string) error {
	if err := h.orders.Delete(ctx, id); err != nil {
		return err
	}
	h.refreshAfterWrite(ctx)
	return nil
}

// SearchCustomers filters by name or address, case-insensitively, and
// returns matches with their order history. It reads through to the store
// rather than the cached snapshot.
func (h *Hook) SearchCustomers(ctx context.Context, query string) ([]CustomerView, error) {
	matches, err := h.customers.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]CustomerView, 0, len(matches))
	for _, c := range matches {
		cv, err := h.customerView(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, nil
}

// TodayTotal is the gallon sum for orders dated today.
func (h *Hook) TodayTotal(ctx context.Context) (int, error) {
	return h.orders.DailyTotal(ctx, time.Now())
}

// MonthlyTotal is the gallon sum for orders dated this calendar month.
func (h *Hook) MonthlyTotal(ctx context.Context) (int, error) {
	return h.orders.MonthlyTotal(ctx, time.Now())
}

// refreshAfterWrite keeps the snapshot current after a mutation. A failed
// refresh is recorded in the error state; the mutation itself succeeded.
func (h *Hook) refreshAfterWrite(ctx context.Context) {
	if err := h.Refresh(ctx); err != nil {
		log.Printf("refresh after write failed: %v", err)
	}
}
