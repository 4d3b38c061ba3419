package model

// InventoryItem is a stocked part or material. SKU is unique per tenant.
type InventoryItem struct {
	TenantEntity
	SKU         string  `json:"sku" gorm:"type:varchar(100);not null"`
	Name        string  `json:"name" gorm:"type:varchar(255);not null"`
	Quantity    float64 `json:"quantity" gorm:"not null;default:0"`
	Unit        string  `json:"unit" gorm:"type:varchar(20);not null;default:'unit'"`
	MinQuantity float64 `json:"min_quantity" gorm:"not null;default:0"`
	Location    string  `json:"location" gorm:"type:varchar(255)"`
}
