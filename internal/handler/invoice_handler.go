package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/repository"
)

// InvoiceRequest is the body for invoice create and update
type InvoiceRequest struct {
	CustomerID  *uuid.UUID        `json:"customer_id"`
	WorkOrderID *uuid.UUID        `json:"work_order_id"`
	Number      *string           `json:"number" validate:"omitempty,max=50"`
	Status      *string           `json:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	DueDate     *time.Time        `json:"due_date"`
	PaidAt      *time.Time        `json:"paid_at"`
	LineItems   *[]model.LineItem `json:"line_items" validate:"omitempty,dive"`
	Subtotal    *float64          `json:"subtotal" validate:"omitempty,gte=0"`
	Tax         *float64          `json:"tax" validate:"omitempty,gte=0"`
	Total       *float64          `json:"total" validate:"omitempty,gte=0"`
}

type invoiceCodec struct{}

func (invoiceCodec) decodeCreate(c echo.Context) (*model.Invoice, error) {
	var req InvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if req.CustomerID == nil || *req.CustomerID == uuid.Nil {
		return nil, apperror.Validation("customer_id is required")
	}
	if req.Number == nil || strings.TrimSpace(*req.Number) == "" {
		return nil, apperror.Validation("number is required")
	}

	inv := &model.Invoice{
		CustomerID:  *req.CustomerID,
		WorkOrderID: req.WorkOrderID,
		Number:      strings.TrimSpace(*req.Number),
		Status:      model.InvoiceDraft,
		DueDate:     req.DueDate,
		PaidAt:      req.PaidAt,
		LineItems:   datatypes.JSONSlice[model.LineItem]{},
	}
	if req.Status != nil {
		inv.Status = model.InvoiceStatus(*req.Status)
	}
	if req.LineItems != nil {
		inv.LineItems = *req.LineItems
	}
	if req.Subtotal != nil {
		inv.Subtotal = *req.Subtotal
	}
	if req.Tax != nil {
		inv.Tax = *req.Tax
	}
	if req.Total != nil {
		inv.Total = *req.Total
	}
	return inv, nil
}

func (invoiceCodec) decodeUpdate(c echo.Context) (repository.Patch, error) {
	var req InvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}

	patch := repository.Patch{}
	if req.CustomerID != nil {
		if *req.CustomerID == uuid.Nil {
			return nil, apperror.Validation("customer_id cannot be empty")
		}
		patch["customer_id"] = *req.CustomerID
	}
	if req.WorkOrderID != nil {
		patch["work_order_id"] = *req.WorkOrderID
	}
	if req.Number != nil {
		number := strings.TrimSpace(*req.Number)
		if number == "" {
			return nil, apperror.Validation("number cannot be empty")
		}
		patch["number"] = number
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if req.DueDate != nil {
		patch["due_date"] = *req.DueDate
	}
	if req.PaidAt != nil {
		patch["paid_at"] = *req.PaidAt
	}
	if req.LineItems != nil {
		patch["line_items"] = datatypes.JSONSlice[model.LineItem](*req.LineItems)
	}
	if req.Subtotal != nil {
		patch["subtotal"] = *req.Subtotal
	}
	if req.Tax != nil {
		patch["tax"] = *req.Tax
	}
	if req.Total != nil {
		patch["total"] = *req.Total
	}
	return patch, nil
}

func (invoiceCodec) filters(c echo.Context) (repository.Filter, error) {
	return newFilter(c).
		oneOf("status", statusValues(model.InvoiceStatuses)...).
		id("customer_id").
		id("work_order_id").
		build()
}

// NewInvoiceHandler serves /billing/invoices
func NewInvoiceHandler(repo *repository.InvoiceRepository, customers *repository.CustomerRepository, workOrders *repository.WorkOrderRepository) *RecordHandler[model.Invoice] {
	return newRecordHandler[model.Invoice]("invoice", repo.Resource(), repo, invoiceCodec{},
		reference[model.Invoice]{column: "customer_id", store: customers, get: func(inv *model.Invoice) *uuid.UUID { return &inv.CustomerID }},
		reference[model.Invoice]{column: "work_order_id", store: workOrders, get: func(inv *model.Invoice) *uuid.UUID { return inv.WorkOrderID }},
	)
}
