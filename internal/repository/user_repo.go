package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/prometheus"
)

// UserRepository stores accounts. Profile reads and inserts go through the
// tenant-scoped repository; the email lookups below serve login, which runs
// before any identity exists.
type UserRepository struct {
	db     *gorm.DB
	scoped *Scoped[model.User, *model.User]
}

// NewUserRepository creates a user repository
func NewUserRepository(db *gorm.DB) (*UserRepository, error) {
	scoped, err := NewScoped[model.User, *model.User](db, "user", Unique[model.User]{
		Column:  "email",
		Message: "email already registered for this tenant",
		Value:   func(u *model.User) string { return u.Email },
	})
	if err != nil {
		return nil, err
	}
	return &UserRepository{db: db, scoped: scoped}, nil
}

// FindActiveByEmail returns the active users with this email in every tenant
func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) ([]model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	users := []model.User{}
	err := r.db.WithContext(ctx).
		Where("email = ? AND active = ?", email, true).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	return users, nil
}

// FindActiveByTenantEmail returns the active user with this email in one tenant
func (r *UserRepository) FindActiveByTenantEmail(ctx context.Context, tenantID uuid.UUID, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ? AND active = ?", tenantID, email, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("find user by tenant and email: %w", err)
	}
	return &user, nil
}

// Get returns the user the identity belongs to, matching both id and tenant
func (r *UserRepository) Get(ctx context.Context, ident access.Identity) (*model.User, error) {
	return r.scoped.FindOne(ctx, ident, ident.UserID)
}

// Exists returns NotFound unless the user id belongs to the identity's tenant
func (r *UserRepository) Exists(ctx context.Context, ident access.Identity, id uuid.UUID) error {
	return r.scoped.Exists(ctx, ident, id)
}

// Create inserts a user into the given tenant
func (r *UserRepository) Create(ctx context.Context, tenantID uuid.UUID, user *model.User) error {
	return r.scoped.Create(ctx, access.Identity{TenantID: tenantID}, user)
}
