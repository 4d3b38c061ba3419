package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/prometheus"
)

const tenantColumn = "tenant_id"

// Columns a caller can never filter on or patch through a scoped repository
var protectedColumns = map[string]bool{
	tenantColumn: true,
	"id":         true,
	"created_at": true,
}

// Filter is a set of column equality conditions
type Filter map[string]interface{}

// Patch is a set of column assignments
type Patch map[string]interface{}

// Unique describes a per-tenant uniqueness constraint checked before writes
type Unique[T any] struct {
	Column  string
	Message string
	Value   func(*T) string
}

// Entity is satisfied by *T when T embeds model.TenantEntity
type Entity[T any] interface {
	*T
	model.TenantOwned
}

// Scoped is the data-access layer for a tenant-owned entity. Every query
// and mutation carries tenant_id = identity.TenantID; there is no method
// that reaches a row without it.
type Scoped[T any, P Entity[T]] struct {
	db       *gorm.DB
	resource string
	columns  map[string]bool
	uniques  []Unique[T]
}

// NewScoped builds a tenant-scoped repository for T
func NewScoped[T any, P Entity[T]](db *gorm.DB, resource string, uniques ...Unique[T]) (*Scoped[T, P], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", resource, err)
	}
	if _, ok := stmt.Schema.FieldsByDBName[tenantColumn]; !ok {
		return nil, fmt.Errorf("%s has no %s column", resource, tenantColumn)
	}

	columns := make(map[string]bool, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		columns[name] = true
	}

	return &Scoped[T, P]{
		db:       db,
		resource: resource,
		columns:  columns,
		uniques:  uniques,
	}, nil
}

// Resource returns the human-readable entity name used in errors
func (r *Scoped[T, P]) Resource() string {
	return r.resource
}

// scope starts a query on T restricted to the identity's tenant
func (r *Scoped[T, P]) scope(ctx context.Context, ident access.Identity) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T)).Where(tenantColumn+" = ?", ident.TenantID)
}

// byID restricts a query to one row of the identity's tenant
func (r *Scoped[T, P]) byID(ctx context.Context, ident access.Identity, id uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Where("id = ? AND "+tenantColumn+" = ?", id, ident.TenantID)
}

// conditions validates caller columns and drops the scope columns
func (r *Scoped[T, P]) conditions(filter Filter) (map[string]interface{}, error) {
	cond := make(map[string]interface{}, len(filter))
	for column, value := range filter {
		if protectedColumns[column] {
			continue
		}
		if !r.columns[column] {
			return nil, apperror.Validation(fmt.Sprintf("unknown field %q", column))
		}
		cond[column] = value
	}
	return cond, nil
}

// Find returns one page of the tenant's rows matching filter, newest first,
// together with the total number of matching rows.
func (r *Scoped[T, P]) Find(ctx context.Context, ident access.Identity, filter Filter, page Page) (*Result[T], error) {
	if err := access.RequireTenant(ident); err != nil {
		return nil, err
	}
	cond, err := r.conditions(filter)
	if err != nil {
		return nil, err
	}
	page = page.normalize()
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := func() *gorm.DB {
		q := r.scope(ctx, ident)
		if len(cond) > 0 {
			q = q.Where(cond)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", r.resource, err)
	}

	items := make([]T, 0, page.Limit)
	err = query().
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.resource, err)
	}

	return &Result[T]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// FindOne looks a row up by id within the identity's tenant. A row owned by
// another tenant yields the same NotFound as a missing one.
func (r *Scoped[T, P]) FindOne(ctx context.Context, ident access.Identity, id uuid.UUID) (*T, error) {
	if err := access.RequireTenant(ident); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apperror.NotFound(r.resource)
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var out T
	if err := r.byID(ctx, ident, id).First(&out).Error; err != nil {
		return nil, r.translate("get", err)
	}
	return &out, nil
}

// Exists returns NotFound unless a row with id exists in the identity's tenant
func (r *Scoped[T, P]) Exists(ctx context.Context, ident access.Identity, id uuid.UUID) error {
	if err := access.RequireTenant(ident); err != nil {
		return err
	}
	if id == uuid.Nil {
		return apperror.NotFound(r.resource)
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var n int64
	if err := r.byID(ctx, ident, id).Model(new(T)).Count(&n).Error; err != nil {
		return fmt.Errorf("check %s: %w", r.resource, err)
	}
	if n == 0 {
		return apperror.NotFound(r.resource)
	}
	return nil
}

// Create inserts entity under the identity's tenant. Any id or tenant id
// already set on entity is discarded.
func (r *Scoped[T, P]) Create(ctx context.Context, ident access.Identity, entity *T) error {
	if err := access.RequireTenant(ident); err != nil {
		return err
	}

	scope := P(entity).Entity()
	scope.ID = uuid.Nil
	scope.TenantID = ident.TenantID
	scope.CreatedAt = time.Time{}
	scope.UpdatedAt = time.Time{}

	for _, u := range r.uniques {
		if err := r.checkUnique(ctx, ident, u, u.Value(entity), uuid.Nil); err != nil {
			return err
		}
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return r.translate("create", err)
	}
	return nil
}

// Update applies patch to one row of the identity's tenant and returns the
// updated row. Keys for id, tenant_id and created_at are ignored.
func (r *Scoped[T, P]) Update(ctx context.Context, ident access.Identity, id uuid.UUID, patch Patch) (*T, error) {
	if err := access.RequireTenant(ident); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apperror.NotFound(r.resource)
	}
	assignments, err := r.conditions(Filter(patch))
	if err != nil {
		return nil, err
	}

	for _, u := range r.uniques {
		if v, ok := assignments[u.Column].(string); ok {
			if err := r.checkUnique(ctx, ident, u, v, id); err != nil {
				return nil, err
			}
		}
	}
	assignments["updated_at"] = time.Now()

	defer prometheus.TrackDBOperation("update")(time.Now())
	var out T
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(new(T)).
			Where("id = ? AND "+tenantColumn+" = ?", id, ident.TenantID).
			Updates(assignments)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ? AND "+tenantColumn+" = ?", id, ident.TenantID).First(&out).Error
	})
	if err != nil {
		return nil, r.translate("update", err)
	}
	return &out, nil
}

// Delete removes one row of the identity's tenant. Deleting nothing is NotFound.
func (r *Scoped[T, P]) Delete(ctx context.Context, ident access.Identity, id uuid.UUID) error {
	if err := access.RequireTenant(ident); err != nil {
		return err
	}
	if id == uuid.Nil {
		return apperror.NotFound(r.resource)
	}
	defer prometheus.TrackDBOperation("delete")(time.Now())

	res := r.byID(ctx, ident, id).Delete(new(T))
	if res.Error != nil {
		return r.translate("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(r.resource)
	}
	return nil
}

// Count returns the number of the tenant's rows matching filter and any
// extra expressions.
func (r *Scoped[T, P]) Count(ctx context.Context, ident access.Identity, filter Filter, exprs ...clause.Expression) (int64, error) {
	if err := access.RequireTenant(ident); err != nil {
		return 0, err
	}
	cond, err := r.conditions(filter)
	if err != nil {
		return 0, err
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := r.scope(ctx, ident)
	if len(cond) > 0 {
		q = q.Where(cond)
	}
	for _, expr := range exprs {
		q = q.Where(expr)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.resource, err)
	}
	return total, nil
}

// CountBy groups the tenant's rows by column and counts each group
func (r *Scoped[T, P]) CountBy(ctx context.Context, ident access.Identity, column string) (map[string]int64, error) {
	if err := access.RequireTenant(ident); err != nil {
		return nil, err
	}
	if !r.columns[column] || protectedColumns[column] {
		return nil, apperror.Validation(fmt.Sprintf("unknown field %q", column))
	}
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rows []struct {
		Grp   string
		Total int64
	}
	err := r.scope(ctx, ident).
		Select("? AS grp, COUNT(*) AS total", clause.Column{Name: column}).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group %s by %s: %w", r.resource, column, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Grp] = row.Total
	}
	return out, nil
}

func (r *Scoped[T, P]) checkUnique(ctx context.Context, ident access.Identity, u Unique[T], value string, exceptID uuid.UUID) error {
	if value == "" {
		return nil
	}
	q := r.scope(ctx, ident).Where(clause.Eq{Column: clause.Column{Name: u.Column}, Value: value})
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check %s uniqueness: %w", r.resource, err)
	}
	if count > 0 {
		return apperror.Duplicate(u.Message)
	}
	return nil
}

func (r *Scoped[T, P]) translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(r.resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Duplicate(r.resource + " already exists")
	default:
		return fmt.Errorf("%s %s: %w", op, r.resource, err)
	}
}
