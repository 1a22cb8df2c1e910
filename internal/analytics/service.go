// Package analytics derives reporting views (range statistics, monthly
// series, top customers, trend) from stored customers and orders without
// mutating them. Aggregates are recomputed from scans on every call.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
)

// CustomerLister supplies the customer records used to label rankings.
type CustomerLister interface {
	GetAll(ctx context.Context) ([]customer.Customer, error)
}

// OrderLister supplies the order records that aggregates are computed from.
type OrderLister interface {
	InRange(ctx context.Context, start, end time.Time) ([]order.Order, error)
}

type Service struct {
	customers CustomerLister
	orders    OrderLister
}

func NewService(customers CustomerLister, orders OrderLister) *Service {
	return &Service{
		customers: customers,
		orders:    orders,
	}
}

// RangeStats filters orders with date in [start, end] inclusive and
// summarizes them. AverageOrder is rounded to one decimal and 0 when the
// range holds no orders.
func (s *Service) RangeStats(ctx context.Context, start, end time.Time) (Stats, error) {
	orders, err := s.orders.InRange(ctx, start, end)
	if err != nil {
		return Stats{}, err
	}

	var gallons int
	for _, o := range orders {
		gallons += o.Gallons
	}

	stats := Stats{
		TotalOrders:  len(orders),
		TotalGallons: gallons,
	}
	if len(orders) > 0 {
		stats.AverageOrder = round1(float64(gallons) / float64(len(orders)))
	}
	return stats, nil
}

// ResolveTimeRange maps a recognized label to a concrete window relative
// to now. The day-based and current-month labels end at today 23:59:59.999;
// lastMonth is the closed range covering the entire previous calendar month.
func ResolveTimeRange(label string, now time.Time) (TimeRange, error) {
	y, m, _ := now.Date()
	loc := now.Location()

	switch label {
	case Range7Days:
		start := now.AddDate(0, 0, -7)
		return TimeRange{Start: midnight(start), End: endOfDay(now)}, nil

	case Range30Days:
		start := now.AddDate(0, 0, -30)
		return TimeRange{Start: midnight(start), End: endOfDay(now)}, nil

	case RangeThisMonth:
		return TimeRange{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			End:   endOfDay(now),
		}, nil

	case RangeLastMonth:
		// Day 0 normalizes to the last day of the previous month,
		// which keeps leap years correct.
		return TimeRange{
			Start: time.Date(y, m-1, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, m, 0, 23, 59, 59, 999*1e6, loc),
		}, nil
	}
	return TimeRange{}, apperr.Validationf("unknown time range %q", label)
}

// MonthlyOrderCounts groups orders by calendar month over the trailing
// window ending at the current month. Months with zero orders are
// included; buckets are ordered oldest to newest.
func (s *Service) MonthlyOrderCounts(ctx context.Context, now time.Time, monthsBack int) ([]MonthlyCount, error) {
	labels, totals, err := s.monthlySeries(ctx, now, monthsBack, func(o order.Order) int { return 1 })
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyCount, len(labels))
	for i := range labels {
		out[i] = MonthlyCount{Month: labels[i], Orders: totals[i]}
	}
	return out, nil
}

// MonthlyGallonTotals is the same grouping as MonthlyOrderCounts but sums
// gallons instead of counting orders.
func (s *Service) MonthlyGallonTotals(ctx context.Context, now time.Time, monthsBack int) ([]MonthlyGallons, error) {
	labels, totals, err := s.monthlySeries(ctx, now, monthsBack, func(o order.Order) int { return o.Gallons })
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyGallons, len(labels))
	for i := range labels {
		out[i] = MonthlyGallons{Month: labels[i], Gallons: totals[i]}
	}
	return out, nil
}

func (s *Service) monthlySeries(ctx context.Context, now time.Time, monthsBack int, weight func(order.Order) int) ([]string, []int, error) {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}

	y, m, _ := now.Date()
	loc := now.Location()
	windowStart := time.Date(y, m-time.Month(monthsBack-1), 1, 0, 0, 0, 0, loc)

	orders, err := s.orders.InRange(ctx, windowStart, endOfDay(now))
	if err != nil {
		return nil, nil, err
	}

	labels := make([]string, monthsBack)
	totals := make([]int, monthsBack)
	index := make(map[int]int, monthsBack)
	for i := 0; i < monthsBack; i++ {
		bucket := windowStart.AddDate(0, i, 0)
		labels[i] = bucket.Format("Jan 2006")
		index[monthKey(bucket)] = i
	}

	for _, o := range orders {
		if i, ok := index[monthKey(o.Date.In(loc))]; ok {
			totals[i] += weight(o)
		}
	}
	return labels, totals, nil
}

// TopCustomersByVolume sums gallons per customer over orders within the
// range, sorted descending. Ties keep first-encountered order; the result
// is truncated to limit. Orders referencing an unknown customer are kept
// under a synthesized name.
func (s *Service) TopCustomersByVolume(ctx context.Context, start, end time.Time, limit int) ([]CustomerVolume, error) {
	if limit <= 0 {
		limit = DefaultTopCustomers
	}

	orders, err := s.orders.InRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	var ranking []CustomerVolume
	index := make(map[string]int)
	for _, o := range orders {
		i, ok := index[o.CustomerID]
		if !ok {
			name, known := names[o.CustomerID]
			if !known {
				name = fmt.Sprintf("Customer %s", o.CustomerID)
			}
			i = len(ranking)
			index[o.CustomerID] = i
			ranking = append(ranking, CustomerVolume{CustomerID: o.CustomerID, Name: name})
		}
		ranking[i].Gallons += o.Gallons
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Gallons > ranking[j].Gallons
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// TrendPercent returns the percentage change between the last two buckets
// of a monthly series, rounded to one decimal. Defined as 0 when the
// previous bucket is 0 or the series is too short.
func TrendPercent(series []int) float64 {
	if len(series) < 2 {
		return 0
	}
	current := series[len(series)-1]
	previous := series[len(series)-2]
	if previous == 0 {
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999*1e6, t.Location())
}
