package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/watermartph/watermart/internal/analytics"
	"github.com/watermartph/watermart/internal/apperr"
	"github.com/watermartph/watermart/internal/appstate"
	"github.com/watermartph/watermart/internal/backup"
	"github.com/watermartph/watermart/internal/customer"
	"github.com/watermartph/watermart/internal/order"
)

type Handler struct {
	hook      *appstate.Hook
	customers *customer.Service
	orders    *order.Service
	analytics *analytics.Service
	backup    *backup.Service
}

func NewHandler(
	hook *appstate.Hook,
	customers *customer.Service,
	orders *order.Service,
	analyticsSvc *analytics.Service,
	backupSvc *backup.Service,
) *Handler {
	return &Handler{
		hook:      hook,
		customers: customers,
		orders:    orders,
		analytics: analyticsSvc,
		backup:    backupSvc,
	}
}

// errJSON maps the error taxonomy onto HTTP statuses.
func errJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrImportFormat):
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

// Customers

func (h *Handler) GetCustomers(c echo.Context) error {
	if q := c.QueryParam("q"); q != "" {
		out, err := h.hook.SearchCustomers(c.Request().Context(), q)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusOK, h.hook.Customers())
}

func (h *Handler) GetCustomer(c echo.Context) error {
	out, err := h.customers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateCustomer(c echo.Context) error {
	var req CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.hook.AddCustomer(c.Request().Context(), req.Name, req.Address, req.InitialGallons)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateCustomer(c echo.Context) error {
	var req UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.hook.UpdateCustomer(c.Request().Context(), c.Param("id"), customer.UpdateParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteCustomer(c echo.Context) error {
	if err := h.hook.DeleteCustomer(c.Request().Context(), c.Param("id")); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetCustomerOrders(c echo.Context) error {
	out, err := h.orders.ByCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RefreshCustomers(c echo.Context) error {
	if err := h.hook.Refresh(c.Request().Context()); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, h.hook.Customers())
}

// Orders

func (h *Handler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if req.Date == nil {
		out, err := h.hook.AddOrder(ctx, req.CustomerID, req.Gallons)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusCreated, out)
	}

	// Backdated order: bypass the "dated now" convenience path.
	out, err := h.orders.Create(ctx, req.CustomerID, req.Gallons, *req.Date)
	if err != nil {
		return errJSON(c, err)
	}
	h.hook.Refresh(ctx)
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateOrder(c echo.Context) error {
	var req UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	out, err := h.hook.UpdateOrder(c.Request().Context(), c.Param("id"), order.UpdateParams{
		Gallons: req.Gallons,
		Date:    req.Date,
	})
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	if err := h.hook.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reports

func (h *Handler) GetTotals(c echo.Context) error {
	ctx := c.Request().Context()
	today, err := h.hook.TodayTotal(ctx)
	if err != nil {
		return errJSON(c, err)
	}
	month, err := h.hook.MonthlyTotal(ctx)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, TotalsResponse{Today: today, Month: month})
}

func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	rng, err := analytics.ResolveTimeRange(rangeLabel(c), time.Now())
	if err != nil {
		return errJSON(c, err)
	}
	stats, err := h.analytics.RangeStats(ctx, rng.Start, rng.End)
	if err != nil {
		return errJSON(c, err)
	}
	totalCustomers, err := h.customers.Count(ctx)
	if err != nil {
		return errJSON(c, err)
	}

	return c.JSON(http.StatusOK, StatsResponse{
		TotalCustomers: totalCustomers,
		TotalOrders:    stats.TotalOrders,
		TotalGallons:   stats.TotalGallons,
		AverageOrder:   stats.AverageOrder,
		Range:          rng,
	})
}

func (h *Handler) GetSalesTrend(c echo.Context) error {
	data, err := h.analytics.MonthlyGallonTotals(c.Request().Context(), time.Now(), monthsBack(c))
	if err != nil {
		return errJSON(c, err)
	}

	series := make([]int, len(data))
	for i, d := range data {
		series[i] = d.Gallons
	}
	return c.JSON(http.StatusOK, TrendResponse{
		Data:            data,
		TrendPercentage: analytics.TrendPercent(series),
	})
}

func (h *Handler) GetOrderDistribution(c echo.Context) error {
	data, err := h.analytics.MonthlyOrderCounts(c.Request().Context(), time.Now(), monthsBack(c))
	if err != nil {
		return errJSON(c, err)
	}

	series := make([]int, len(data))
	for i, d := range data {
		series[i] = d.Orders
	}
	return c.JSON(http.StatusOK, DistributionResponse{
		Data:            data,
		TrendPercentage: analytics.TrendPercent(series),
	})
}

func (h *Handler) GetTopCustomers(c echo.Context) error {
	rng, err := analytics.ResolveTimeRange(rangeLabel(c), time.Now())
	if err != nil {
		return errJSON(c, err)
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	out, err := h.analytics.TopCustomersByVolume(c.Request().Context(), rng.Start, rng.End, limit)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Backup

func (h *Handler) ExportBackup(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+backup.Filename(time.Now())+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return h.backup.WriteTo(c.Request().Context(), c.Response())
}

func (h *Handler) ImportBackup(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.backup.Import(ctx, c.Request().Body); err != nil {
		return errJSON(c, err)
	}
	h.hook.Refresh(ctx)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) SnapshotBackup(c echo.Context) error {
	out, err := h.backup.Snapshot(c.Request().Context())
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func rangeLabel(c echo.Context) string {
	if v := c.QueryParam("range"); v != "" {
		return v
	}
	return analytics.Range30Days
}

func monthsBack(c echo.Context) int {
	if v := c.QueryParam("months"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return analytics.DefaultMonthsBack
}
