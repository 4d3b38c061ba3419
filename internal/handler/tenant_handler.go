package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/repository"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/prometheus"
)

// TenantStore is the tenant administration storage
type TenantStore interface {
	List(ctx context.Context) ([]model.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	Create(ctx context.Context, tenant *model.Tenant) error
	Update(ctx context.Context, id uuid.UUID, patch repository.Patch) (*model.Tenant, error)
}

// TenantHandler serves /tenants. Routes are Admin-only and deliberately not
// filtered by the caller's tenant.
type TenantHandler struct {
	tenants TenantStore
}

// NewTenantHandler creates the tenant handler
func NewTenantHandler(tenants TenantStore) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// TenantRequest is the body for tenant create and update
type TenantRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Slug     *string `json:"slug" validate:"omitempty,max=100"`
	Plan     *string `json:"plan" validate:"omitempty,oneof=starter standard premium"`
	Timezone *string `json:"timezone" validate:"omitempty,max=64"`
	Currency *string `json:"currency" validate:"omitempty,len=3"`
	Active   *bool   `json:"active"`
}

// ListTenants handles GET /tenants
func (h *TenantHandler) ListTenants(c echo.Context) error {
	prometheus.RecordTenantAdmin("list")

	tenants, err := h.tenants.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tenants)
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandler) GetTenant(c echo.Context) error {
	prometheus.RecordTenantAdmin("get")

	id, err := pathID(c, "tenant")
	if err != nil {
		return err
	}
	tenant, err := h.tenants.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tenant)
}

// CreateTenant handles POST /tenants
func (h *TenantHandler) CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantAdmin("create")

	var req TenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return apperror.Validation("name is required")
	}

	tenant := &model.Tenant{
		Name:   strings.TrimSpace(*req.Name),
		Plan:   model.PlanStandard,
		Active: true,
	}
	if req.Slug != nil {
		if slug := strings.ToLower(strings.TrimSpace(*req.Slug)); slug != "" {
			tenant.Slug = &slug
		}
	}
	if req.Plan != nil {
		tenant.Plan = model.Plan(*req.Plan)
	}
	if req.Timezone != nil {
		tenant.Settings.Timezone = *req.Timezone
	}
	if req.Currency != nil {
		tenant.Settings.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Active != nil {
		tenant.Active = *req.Active
	}

	if err := h.tenants.Create(c.Request().Context(), tenant); err != nil {
		return err
	}

	log.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("name", tenant.Name))
	return respond(c, http.StatusCreated, tenant)
}

// UpdateTenant handles PUT /tenants/:id. Setting active to false is how a
// tenant is retired.
func (h *TenantHandler) UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantAdmin("update")

	id, err := pathID(c, "tenant")
	if err != nil {
		return err
	}

	var req TenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := repository.Patch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return apperror.Validation("name cannot be empty")
		}
		patch["name"] = name
	}
	if req.Slug != nil {
		if slug := strings.ToLower(strings.TrimSpace(*req.Slug)); slug != "" {
			patch["slug"] = slug
		} else {
			patch["slug"] = nil
		}
	}
	if req.Plan != nil {
		patch["plan"] = *req.Plan
	}
	if req.Timezone != nil {
		patch["settings_timezone"] = *req.Timezone
	}
	if req.Currency != nil {
		patch["settings_currency"] = strings.ToUpper(*req.Currency)
	}
	if req.Active != nil {
		patch["active"] = *req.Active
	}

	tenant, err := h.tenants.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}

	log.Info("Tenant updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Bool("active", tenant.Active))
	return respond(c, http.StatusOK, tenant)
}
