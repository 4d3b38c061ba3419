package model

// Customer of a tenant
type Customer struct {
	TenantEntity
	Name           string `json:"name" gorm:"type:varchar(255);not null;index"`
	Email          string `json:"email" gorm:"type:varchar(255)"`
	Phone          string `json:"phone" gorm:"type:varchar(50)"`
	Address        string `json:"address" gorm:"type:text"`
	BillingAddress string `json:"billing_address" gorm:"type:text"`
	Notes          string `json:"notes" gorm:"type:text"`
}
