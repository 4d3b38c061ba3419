package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/ratelimit"
	"github.com/thidaswick/WorqHub/prometheus"
)

// UserStore is the account storage the auth flows need
type UserStore interface {
	FindActiveByEmail(ctx context.Context, email string) ([]model.User, error)
	FindActiveByTenantEmail(ctx context.Context, tenantID uuid.UUID, email string) (*model.User, error)
	Get(ctx context.Context, ident access.Identity) (*model.User, error)
	Create(ctx context.Context, tenantID uuid.UUID, user *model.User) error
}

// TenantStore resolves tenants by id
type TenantStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(ident access.Identity) (string, time.Time, error)
}

// PasswordHasher hashes and checks passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	Burn(password string)
}

// LoginInput carries the credentials presented at login
type LoginInput struct {
	Email    string
	Password string
	TenantID *uuid.UUID
	ClientIP string
}

// RegisterInput carries a new account's details
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
	TenantID *uuid.UUID
}

// AuthResult is returned by a successful login or registration
type AuthResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *model.User   `json:"user"`
	Tenant    *model.Tenant `json:"tenant,omitempty"`
}

// AuthService issues credentials. It is the only place passwords are checked.
type AuthService struct {
	users   UserStore
	tenants TenantStore
	tokens  TokenIssuer
	hasher  PasswordHasher
	limiter ratelimit.Limiter
	log     *zap.Logger
}

// NewAuthService wires the auth flows. A nil limiter disables login throttling.
func NewAuthService(users UserStore, tenants TenantStore, tokens TokenIssuer, hasher PasswordHasher, limiter ratelimit.Limiter, log *zap.Logger) *AuthService {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:   users,
		tenants: tenants,
		tokens:  tokens,
		hasher:  hasher,
		limiter: limiter,
		log:     log,
	}
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and issues a token for the matched account.
// Without a tenant id the email is looked up across tenants; when it belongs
// to several accounts the caller must retry with a tenant id.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	throttleKey := email + "|" + in.ClientIP
	decision, err := s.limiter.Allow(ctx, throttleKey)
	if err != nil {
		// Throttle store outage must not lock everyone out
		s.log.Warn("Login throttle unavailable", zap.Error(err))
	} else if !decision.Allowed {
		prometheus.RecordLoginThrottled()
		s.log.Info("Login throttled",
			zap.String("client_ip", in.ClientIP),
			zap.Time("reset_at", decision.ResetAt))
		return nil, apperror.ErrTooManyAttempts
	}

	user, err := s.authenticate(ctx, email, in.Password, in.TenantID)
	if err != nil {
		prometheus.RecordLogin(false)
		return nil, err
	}

	tenant, err := s.tenants.Get(ctx, user.TenantID)
	if err != nil {
		prometheus.RecordLogin(false)
		if apperror.Is(err, apperror.KindNotFound) {
			s.log.Error("User belongs to a missing tenant",
				zap.String("user_id", user.ID.String()),
				zap.String("tenant_id", user.TenantID.String()))
			return nil, apperror.ErrInvalidLogin
		}
		return nil, err
	}
	if !tenant.Active {
		prometheus.RecordLogin(false)
		return nil, apperror.ErrTenantInactive
	}

	if err := s.limiter.Reset(ctx, throttleKey); err != nil {
		s.log.Warn("Failed to reset login throttle", zap.Error(err))
	}

	result, err := s.issue(user, tenant)
	if err != nil {
		return nil, err
	}
	prometheus.RecordLogin(true)
	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("role", string(user.Role)))
	return result, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string, tenantID *uuid.UUID) (*model.User, error) {
	if tenantID != nil && *tenantID != uuid.Nil {
		user, err := s.users.FindActiveByTenantEmail(ctx, *tenantID, email)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				s.hasher.Burn(password)
				return nil, apperror.ErrInvalidLogin
			}
			return nil, err
		}
		if !s.hasher.Verify(password, user.PasswordHash) {
			return nil, apperror.ErrInvalidLogin
		}
		return user, nil
	}

	candidates, err := s.users.FindActiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	switch len(candidates) {
	case 0:
		s.hasher.Burn(password)
		return nil, apperror.ErrInvalidLogin
	case 1:
		if !s.hasher.Verify(password, candidates[0].PasswordHash) {
			return nil, apperror.ErrInvalidLogin
		}
		return &candidates[0], nil
	}

	// Only reveal that a tenant id is needed to someone who knows a password
	for i := range candidates {
		if s.hasher.Verify(password, candidates[i].PasswordHash) {
			return nil, apperror.ErrTenantRequired
		}
	}
	return nil, apperror.ErrInvalidLogin
}

// Register creates an account in an existing, active tenant and logs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.TenantID == nil || *in.TenantID == uuid.Nil {
		return nil, apperror.Validation("tenantId is required")
	}
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, apperror.Validation("email, password and name are required")
	}

	role := access.DefaultRole
	if in.Role != "" {
		parsed, ok := access.ParseRole(in.Role)
		if !ok {
			return nil, apperror.Validation("role must be one of Admin, Manager, Staff")
		}
		role = parsed
	}

	tenant, err := s.tenants.Get(ctx, *in.TenantID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.ErrTenantNotFound
		}
		return nil, err
	}
	if !tenant.Active {
		return nil, apperror.ErrTenantInactive
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to process password", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, tenant.ID, user); err != nil {
		return nil, err
	}

	result, err := s.issue(user, tenant)
	if err != nil {
		return nil, err
	}
	prometheus.RecordRegister()
	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("role", string(role)))
	return result, nil
}

// Me returns the account the identity refers to, within its own tenant
func (s *AuthService) Me(ctx context.Context, ident access.Identity) (*model.User, error) {
	user, err := s.users.Get(ctx, ident)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User, tenant *model.Tenant) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.Identity())
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to generate token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user, Tenant: tenant}, nil
}
