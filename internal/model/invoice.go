package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InvoiceStatus is the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists every invoice status
var InvoiceStatuses = []InvoiceStatus{
	InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled,
}

// LineItem is a billed line on an invoice
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Invoice bills a customer. Number is unique per tenant.
type Invoice struct {
	TenantEntity
	CustomerID  uuid.UUID                     `json:"customer_id" gorm:"type:uuid;not null;index"`
	WorkOrderID *uuid.UUID                    `json:"work_order_id,omitempty" gorm:"type:uuid"`
	Number      string                        `json:"number" gorm:"type:varchar(50);not null"`
	Status      InvoiceStatus                 `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	DueDate     *time.Time                    `json:"due_date,omitempty"`
	PaidAt      *time.Time                    `json:"paid_at,omitempty"`
	LineItems   datatypes.JSONSlice[LineItem] `json:"line_items"`
	Subtotal    float64                       `json:"subtotal" gorm:"not null;default:0"`
	Tax         float64                       `json:"tax" gorm:"not null;default:0"`
	Total       float64                       `json:"total" gorm:"not null;default:0"`
}
