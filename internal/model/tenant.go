package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan is a tenant's subscription tier
type Plan string

const (
	PlanStarter  Plan = "starter"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Valid reports whether p is a known plan
func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// TenantSettings holds per-tenant localisation
type TenantSettings struct {
	Timezone string `json:"timezone" gorm:"type:varchar(64);default:'UTC'"`
	Currency string `json:"currency" gorm:"type:varchar(3);default:'USD'"`
}

// Tenant is an organisation. Tenants are deactivated, never hard-deleted.
type Tenant struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;index"`
	Slug      *string        `json:"slug,omitempty" gorm:"type:varchar(100);uniqueIndex"`
	Plan      Plan           `json:"plan" gorm:"type:varchar(20);not null;default:'standard'"`
	Settings  TenantSettings `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`
	Active    bool           `json:"active" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a fresh id and fills defaults
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Plan == "" {
		t.Plan = PlanStandard
	}
	if t.Settings.Timezone == "" {
		t.Settings.Timezone = "UTC"
	}
	if t.Settings.Currency == "" {
		t.Settings.Currency = "USD"
	}
	return nil
}
