package repository

import (
	"gorm.io/gorm"

	"github.com/thidaswick/WorqHub/internal/model"
)

type (
	WorkOrderRepository = Scoped[model.WorkOrder, *model.WorkOrder]
	CustomerRepository  = Scoped[model.Customer, *model.Customer]
	InventoryRepository = Scoped[model.InventoryItem, *model.InventoryItem]
	InvoiceRepository   = Scoped[model.Invoice, *model.Invoice]
)

// Repositories bundles the data access used by the HTTP layer
type Repositories struct {
	Tenants    *TenantRepository
	Users      *UserRepository
	WorkOrders *WorkOrderRepository
	Customers  *CustomerRepository
	Inventory  *InventoryRepository
	Invoices   *InvoiceRepository
}

// New builds every repository on one datastore handle
func New(db *gorm.DB) (*Repositories, error) {
	users, err := NewUserRepository(db)
	if err != nil {
		return nil, err
	}
	workOrders, err := NewScoped[model.WorkOrder, *model.WorkOrder](db, "work order")
	if err != nil {
		return nil, err
	}
	customers, err := NewScoped[model.Customer, *model.Customer](db, "customer")
	if err != nil {
		return nil, err
	}
	inventory, err := NewScoped[model.InventoryItem, *model.InventoryItem](db, "inventory item", Unique[model.InventoryItem]{
		Column:  "sku",
		Message: "sku already exists",
		Value:   func(i *model.InventoryItem) string { return i.SKU },
	})
	if err != nil {
		return nil, err
	}
	invoices, err := NewScoped[model.Invoice, *model.Invoice](db, "invoice", Unique[model.Invoice]{
		Column:  "number",
		Message: "invoice number already exists",
		Value:   func(i *model.Invoice) string { return i.Number },
	})
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Tenants:    NewTenantRepository(db),
		Users:      users,
		WorkOrders: workOrders,
		Customers:  customers,
		Inventory:  inventory,
		Invoices:   invoices,
	}, nil
}
