package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantEntity is embedded by every tenant-owned record. TenantID is set
// from the caller's identity at creation and never changes afterwards.
type TenantEntity struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entity gives the repository access to the embedded scope fields
func (e *TenantEntity) Entity() *TenantEntity {
	return e
}

// BeforeCreate assigns a fresh id
func (e *TenantEntity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TenantOwned is implemented by pointers to types embedding TenantEntity
type TenantOwned interface {
	Entity() *TenantEntity
}
