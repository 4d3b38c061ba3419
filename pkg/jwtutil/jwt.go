package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
)

const issuer = "worqhub"

// Config holds JWT configuration
type Config struct {
	Secret     string
	Expiration time.Duration
}

// UserClaims represents the JWT claims for an authenticated user
type UserClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and validates access tokens with a server-held secret
type Manager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewManager creates a token manager. The secret must not be empty.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.Expiration <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive, got %s", cfg.Expiration)
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the manager that reads time from now
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

// GenerateToken signs a token embedding the identity
func (m *Manager) GenerateToken(ident access.Identity) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.expiration)

	claims := UserClaims{
		UserID: ident.UserID.String(),
		Role:   string(ident.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   ident.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if ident.HasTenant() {
		claims.TenantID = ident.TenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies the token and returns the embedded identity verbatim.
// The datastore is not consulted, so role or tenant changes made after the
// token was issued are not reflected until it expires.
func (m *Manager) ValidateToken(tokenString string) (access.Identity, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return access.Identity{}, apperror.Wrap(apperror.KindInvalidCredential, apperror.ErrInvalidCredential.Message, err)
	}
	if !token.Valid {
		return access.Identity{}, apperror.ErrInvalidCredential
	}

	return claims.identity()
}

func (c *UserClaims) identity() (access.Identity, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return access.Identity{}, apperror.Wrap(apperror.KindInvalidCredential, apperror.ErrInvalidCredential.Message, fmt.Errorf("user_id claim: %w", err))
	}

	tenantID := uuid.Nil
	if c.TenantID != "" {
		tenantID, err = uuid.Parse(c.TenantID)
		if err != nil {
			return access.Identity{}, apperror.Wrap(apperror.KindInvalidCredential, apperror.ErrInvalidCredential.Message, fmt.Errorf("tenant_id claim: %w", err))
		}
	}

	return access.Identity{
		UserID:   userID,
		TenantID: tenantID,
		Role:     access.Role(c.Role),
	}, nil
}
