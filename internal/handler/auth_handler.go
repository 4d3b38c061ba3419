package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/service"
	"github.com/thidaswick/WorqHub/prometheus"
)

// Authenticator is the credential issuer behind the auth routes
type Authenticator interface {
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Me(ctx context.Context, ident access.Identity) (*model.User, error)
}

// AuthHandler serves /auth
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginRequest is the login body. TenantID is needed only when the email
// is registered in more than one tenant.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	TenantID string `json:"tenantId"`
}

// RegisterRequest is the registration body
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tenantID, err := optionalTenantID(req.TenantID)
	if err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		TenantID: tenantID,
		ClientIP: c.RealIP(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_registration")
		return err
	}

	tenantID, err := optionalTenantID(req.TenantID)
	if err != nil {
		return err
	}

	res, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		TenantID: tenantID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, res)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Me(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

func optionalTenantID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("tenantId must be a valid id")
	}
	return &id, nil
}
