package customer

import "time"

// Customer is a billing/delivery contact with an order history.
// ID is generated at creation time and never reused or mutated.
// UpdatedAt advances on any field mutation.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateParams carries optional field changes for Update.
// A nil field leaves the stored value unchanged.
type UpdateParams struct {
	Name    *string
	Address *string
}
