package api

import (
	"time"

	"github.com/watermartph/watermart/internal/analytics"
)

// -------------------------
// Customer DTOs
// -------------------------

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	// InitialGallons > 0 pairs the new customer with a seed order dated now.
	InitialGallons int `json:"initialGallons"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// -------------------------
// Order DTOs
// -------------------------

type CreateOrderRequest struct {
	CustomerID string     `json:"customerId"`
	Gallons    int        `json:"gallons"`
	Date       *time.Time `json:"date"` // nil means "now"
}

type UpdateOrderRequest struct {
	Gallons *int       `json:"gallons"`
	Date    *time.Time `json:"date"`
}

// -------------------------
// Report DTOs
// -------------------------

type TotalsResponse struct {
	Today int `json:"today"`
	Month int `json:"month"`
}

type StatsResponse struct {
	TotalCustomers int                 `json:"totalCustomers"`
	TotalOrders    int                 `json:"totalOrders"`
	TotalGallons   int                 `json:"totalGallons"`
	AverageOrder   float64             `json:"averageOrder"`
	Range          analytics.TimeRange `json:"range"`
}

type TrendResponse struct {
	Data            []analytics.MonthlyGallons `json:"data"`
	TrendPercentage float64                    `json:"trendPercentage"`
}

type DistributionResponse struct {
	Data            []analytics.MonthlyCount `json:"data"`
	TrendPercentage float64                  `json:"trendPercentage"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
