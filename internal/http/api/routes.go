package api

import "github.com/labstack/echo/v4"

func RegisterRoutes(g *echo.Group, h *Handler) {

	// Customers
	g.GET("/customers", h.GetCustomers)
	g.GET("/customers/:id", h.GetCustomer)
	g.POST("/customers", h.CreateCustomer)
	g.PUT("/customers/:id", h.UpdateCustomer)
	g.DELETE("/customers/:id", h.DeleteCustomer)
	g.GET("/customers/:id/orders", h.GetCustomerOrders)
	g.POST("/customers/refresh", h.RefreshCustomers)

	// Orders
	g.POST("/orders", h.CreateOrder)
	g.PUT("/orders/:id", h.UpdateOrder)
	g.DELETE("/orders/:id", h.DeleteOrder)

	// Reports
	g.GET("/reports/totals", h.GetTotals)
	g.GET("/reports/stats", h.GetStats)
	g.GET("/reports/sales-trend", h.GetSalesTrend)
	g.GET("/reports/order-distribution", h.GetOrderDistribution)
	g.GET("/reports/top-customers", h.GetTopCustomers)

	// Backup
	g.GET("/backup/export", h.ExportBackup)
	g.POST("/backup/import", h.ImportBackup)
	g.POST("/backup/snapshot", h.SnapshotBackup)
}
