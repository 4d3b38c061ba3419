package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm/clause"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/repository"
	"github.com/thidaswick/WorqHub/prometheus"
)

// counter is the tenant-scoped aggregate surface of a repository
type counter interface {
	Count(ctx context.Context, ident access.Identity, filter repository.Filter, exprs ...clause.Expression) (int64, error)
	CountBy(ctx context.Context, ident access.Identity, column string) (map[string]int64, error)
}

// ReportHandler serves /reports
type ReportHandler struct {
	workOrders counter
	customers  counter
	inventory  counter
	invoices   counter
}

// NewReportHandler creates the report handler
func NewReportHandler(workOrders, customers, inventory, invoices counter) *ReportHandler {
	return &ReportHandler{workOrders: workOrders, customers: customers, inventory: inventory, invoices: invoices}
}

// Dashboard summarises the caller's tenant
type Dashboard struct {
	WorkOrdersByStatus map[string]int64 `json:"work_orders_by_status"`
	WorkOrdersTotal    int64            `json:"work_orders_total"`
	Customers          int64            `json:"customers"`
	InventoryItems     int64            `json:"inventory_items"`
	LowStockItems      int64            `json:"low_stock_items"`
	OpenInvoices       int64            `json:"open_invoices"`
	OverdueInvoices    int64            `json:"overdue_invoices"`
}

var lowStock = clause.Expr{SQL: "quantity <= min_quantity"}

// GetDashboard handles GET /reports/dashboard
func (h *ReportHandler) GetDashboard(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	prometheus.RecordTenantOperation("report", "dashboard")
	ctx := c.Request().Context()

	byStatus, err := h.workOrders.CountBy(ctx, ident, "status")
	if err != nil {
		return err
	}
	dash := Dashboard{WorkOrdersByStatus: make(map[string]int64, len(model.WorkOrderStatuses))}
	for _, s := range model.WorkOrderStatuses {
		dash.WorkOrdersByStatus[string(s)] = byStatus[string(s)]
		dash.WorkOrdersTotal += byStatus[string(s)]
	}

	if dash.Customers, err = h.customers.Count(ctx, ident, nil); err != nil {
		return err
	}
	if dash.InventoryItems, err = h.inventory.Count(ctx, ident, nil); err != nil {
		return err
	}
	if dash.LowStockItems, err = h.inventory.Count(ctx, ident, nil, lowStock); err != nil {
		return err
	}

	invoices, err := h.invoices.CountBy(ctx, ident, "status")
	if err != nil {
		return err
	}
	dash.OpenInvoices = invoices[string(model.InvoiceDraft)] + invoices[string(model.InvoiceSent)] + invoices[string(model.InvoiceOverdue)]
	dash.OverdueInvoices = invoices[string(model.InvoiceOverdue)]

	return respond(c, http.StatusOK, dash)
}
