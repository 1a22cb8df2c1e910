package analytics

import "time"

// Recognized time range labels for report queries.
const (
	Range7Days     = "7days"
	Range30Days    = "30days"
	RangeThisMonth = "thisMonth"
	RangeLastMonth = "lastMonth"
)

const (
	// DefaultMonthsBack is the trailing window for monthly series.
	DefaultMonthsBack = 6

	// DefaultTopCustomers is the truncation limit for volume rankings.
	DefaultTopCustomers = 5
)

// TimeRange is an inclusive [Start, End] reporting window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Stats summarizes orders within a time range.
type Stats struct {
	TotalOrders  int     `json:"totalOrders"`
	TotalGallons int     `json:"totalGallons"`
	AverageOrder float64 `json:"averageOrder"`
}

// MonthlyCount is one bucket of the order distribution series.
type MonthlyCount struct {
	Month  string `json:"month"`
	Orders int    `json:"orders"`
}

// MonthlyGallons is one bucket of the sales trend series.
type MonthlyGallons struct {
	Month   string `json:"month"`
	Gallons int    `json:"gallons"`
}

// CustomerVolume is one entry of the top-customers ranking.
type CustomerVolume struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Gallons    int    `json:"gallons"`
}
