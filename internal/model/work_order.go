package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkOrderStatus is the lifecycle state of a work order
type WorkOrderStatus string

const (
	WorkOrderDraft      WorkOrderStatus = "draft"
	WorkOrderScheduled  WorkOrderStatus = "scheduled"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

// WorkOrderStatuses lists statuses in lifecycle order
var WorkOrderStatuses = []WorkOrderStatus{
	WorkOrderDraft, WorkOrderScheduled, WorkOrderInProgress, WorkOrderCompleted, WorkOrderCancelled,
}

// Priority of a work order
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// WorkOrderItem is a material line on a work order
type WorkOrderItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// WorkOrder is a unit of field work for a customer
type WorkOrder struct {
	TenantEntity
	CustomerID  *uuid.UUID                         `json:"customer_id,omitempty" gorm:"type:uuid;index"`
	Title       string                             `json:"title" gorm:"type:varchar(255);not null"`
	Description string                             `json:"description" gorm:"type:text"`
	Status      WorkOrderStatus                    `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	Priority    Priority                           `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	ScheduledAt *time.Time                         `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time                         `json:"completed_at,omitempty"`
	AssignedTo  *uuid.UUID                         `json:"assigned_to,omitempty" gorm:"type:uuid"`
	Items       datatypes.JSONSlice[WorkOrderItem] `json:"items"`
}
