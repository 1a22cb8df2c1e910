package order

import "time"

// Order is a single gallon-quantity delivery record tied to one customer.
// Date is when the delivery occurred (caller-supplied, may be backdated);
// CreatedAt is when the record was written.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Gallons    int       `json:"gallons"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UpdateParams carries optional field changes for Update.
// A nil field leaves the stored value unchanged.
type UpdateParams struct {
	Gallons *int
	Date    *time.Time
}
