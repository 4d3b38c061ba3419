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

// WorkOrderRequest is the body for work order create and update.
// Absent fields are left unchanged on update.
type WorkOrderRequest struct {
	CustomerID  *uuid.UUID             `json:"customer_id"`
	Title       *string                `json:"title" validate:"omitempty,max=255"`
	Description *string                `json:"description"`
	Status      *string                `json:"status" validate:"omitempty,oneof=draft scheduled in_progress completed cancelled"`
	Priority    *string                `json:"priority" validate:"omitempty,oneof=low medium high"`
	ScheduledAt *time.Time             `json:"scheduled_at"`
	CompletedAt *time.Time             `json:"completed_at"`
	AssignedTo  *uuid.UUID             `json:"assigned_to"`
	Items       *[]model.WorkOrderItem `json:"items" validate:"omitempty,dive"`
}

type workOrderCodec struct{}

func (workOrderCodec) decodeCreate(c echo.Context) (*model.WorkOrder, error) {
	var req WorkOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, apperror.Validation("title is required")
	}

	wo := &model.WorkOrder{
		CustomerID:  req.CustomerID,
		Title:       strings.TrimSpace(*req.Title),
		Status:      model.WorkOrderDraft,
		Priority:    model.PriorityMedium,
		ScheduledAt: req.ScheduledAt,
		CompletedAt: req.CompletedAt,
		AssignedTo:  req.AssignedTo,
		Items:       datatypes.JSONSlice[model.WorkOrderItem]{},
	}
	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.Status != nil {
		wo.Status = model.WorkOrderStatus(*req.Status)
	}
	if req.Priority != nil {
		wo.Priority = model.Priority(*req.Priority)
	}
	if req.Items != nil {
		wo.Items = *req.Items
	}
	return wo, nil
}

func (workOrderCodec) decodeUpdate(c echo.Context) (repository.Patch, error) {
	var req WorkOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}

	patch := repository.Patch{}
	if req.CustomerID != nil {
		patch["customer_id"] = *req.CustomerID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.Validation("title cannot be empty")
		}
		patch["title"] = title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if req.Priority != nil {
		patch["priority"] = *req.Priority
	}
	if req.ScheduledAt != nil {
		patch["scheduled_at"] = *req.ScheduledAt
	}
	if req.CompletedAt != nil {
		patch["completed_at"] = *req.CompletedAt
	}
	if req.AssignedTo != nil {
		patch["assigned_to"] = *req.AssignedTo
	}
	if req.Items != nil {
		patch["items"] = datatypes.JSONSlice[model.WorkOrderItem](*req.Items)
	}
	return patch, nil
}

func (workOrderCodec) filters(c echo.Context) (repository.Filter, error) {
	return newFilter(c).
		oneOf("status", statusValues(model.WorkOrderStatuses)...).
		oneOf("priority", string(model.PriorityLow), string(model.PriorityMedium), string(model.PriorityHigh)).
		id("customer_id").
		id("assigned_to").
		build()
}

func statusValues[S ~string](statuses []S) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// NewWorkOrderHandler serves /work-orders
func NewWorkOrderHandler(repo *repository.WorkOrderRepository, customers *repository.CustomerRepository, users *repository.UserRepository) *RecordHandler[model.WorkOrder] {
	return newRecordHandler[model.WorkOrder]("work_order", repo.Resource(), repo, workOrderCodec{},
		reference[model.WorkOrder]{column: "customer_id", store: customers, get: func(w *model.WorkOrder) *uuid.UUID { return w.CustomerID }},
		reference[model.WorkOrder]{column: "assigned_to", store: users, get: func(w *model.WorkOrder) *uuid.UUID { return w.AssignedTo }},
	)
}
