package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/prometheus"
)

// TenantRepository manages tenants themselves. Tenants are not
// tenant-owned, so access is gated by the tenants:admin permission at the
// route instead of by a scope column.
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// List returns every tenant sorted by name
func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	tenants := []model.Tenant{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// Get returns the tenant with the given id
func (r *TenantRepository) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	if id == uuid.Nil {
		return nil, apperror.NotFound("tenant")
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("tenant")
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &tenant, nil
}

// Create inserts a tenant. A slug, when given, must be unused.
func (r *TenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	tenant.ID = uuid.Nil
	if tenant.Slug != nil {
		if err := r.checkSlug(ctx, *tenant.Slug, uuid.Nil); err != nil {
			return err
		}
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Duplicate("slug already in use")
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// Update applies patch to a tenant and returns it. Tenants are deactivated
// through this call rather than deleted.
func (r *TenantRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*model.Tenant, error) {
	if id == uuid.Nil {
		return nil, apperror.NotFound("tenant")
	}

	assignments := make(map[string]interface{}, len(patch)+1)
	for column, value := range patch {
		if column == "id" || column == "created_at" {
			continue
		}
		assignments[column] = value
	}
	if slug, ok := assignments["slug"].(string); ok {
		if err := r.checkSlug(ctx, slug, id); err != nil {
			return nil, err
		}
	}
	assignments["updated_at"] = time.Now()

	defer prometheus.TrackDBOperation("update")(time.Now())
	var tenant model.Tenant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Tenant{}).Where("id = ?", id).Updates(assignments)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&tenant).Error
	})
	switch {
	case err == nil:
		return &tenant, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.NotFound("tenant")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apperror.Duplicate("slug already in use")
	default:
		return nil, fmt.Errorf("update tenant: %w", err)
	}
}

func (r *TenantRepository) checkSlug(ctx context.Context, slug string, exceptID uuid.UUID) error {
	q := r.db.WithContext(ctx).Model(&model.Tenant{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check tenant slug: %w", err)
	}
	if count > 0 {
		return apperror.Duplicate("slug already in use")
	}
	return nil
}
