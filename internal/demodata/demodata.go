// Package demodata seeds a fresh database with sample records so the
// application has something to show on first run.
package demodata

import (
	"context"
	"math/rand"
	"time"

	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
)

var sampleCustomers = []struct {
	name    string
	address string
}{
	{name: "Jo Kitahara", address: "BLK 1 LOT 4, Kasamatsu"},
	{name: "Jane Doe", address: "BLK 3 LOT 5, Somewhere"},
}

// Seed inserts the sample customers, each with one order dated today and
// one dated yesterday. It is a no-op unless the customer collection is
// empty, so calling it repeatedly never duplicates data. Returns the
// number of customers seeded.
func Seed(ctx context.Context, customers *customer.Service, orders *order.Service) (int, error) {
	count, err := customers.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	for _, sc := range sampleCustomers {
		c, err := customers.Create(ctx, sc.name, sc.address)
		if err != nil {
			return 0, err
		}

		if _, err := orders.Create(ctx, c.ID, sampleGallons(), now); err != nil {
			return 0, err
		}
		if _, err := orders.Create(ctx, c.ID, sampleGallons(), yesterday); err != nil {
			return 0, err
		}
	}

	return len(sampleCustomers), nil
}

// sampleGallons returns a plausible delivery size between 20 and 119.
func sampleGallons() int {
	return rand.Intn(100) + 20
}
