package jwtutil

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: "test-secret", Expiration: 7 * 24 * time.Hour})
	require.NoError(t, err)
	return m
}

func TestGenerateAndValidate(t *testing.T) {
	m := newTestManager(t)
	ident := access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleManager}

	token, expiresAt, err := m.GenerateToken(ident)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	got, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ident, got)
}

func TestValidateKeepsUnknownRoleVerbatim(t *testing.T) {
	m := newTestManager(t)
	ident := access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: access.Role("Owner")}

	token, _, err := m.GenerateToken(ident)
	require.NoError(t, err)

	got, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, access.Role("Owner"), got.Role)
}

func TestValidateWithoutTenant(t *testing.T) {
	m := newTestManager(t)
	ident := access.Identity{UserID: uuid.New(), Role: access.RoleAdmin}

	token, _, err := m.GenerateToken(ident)
	require.NoError(t, err)

	got, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.False(t, got.HasTenant())
}

func TestValidateExpired(t *testing.T) {
	m := newTestManager(t)
	issued := time.Now().Add(-8 * 24 * time.Hour)
	token, _, err := m.WithClock(func() time.Time { return issued }).GenerateToken(access.Identity{
		UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
}

func TestValidateJustBeforeExpiry(t *testing.T) {
	m := newTestManager(t)
	issued := time.Now().Add(-7*24*time.Hour + time.Minute)
	token, _, err := m.WithClock(func() time.Time { return issued }).GenerateToken(access.Identity{
		UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleStaff,
	})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.NoError(t, err)
}

func TestValidateWrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(Config{Secret: "other-secret", Expiration: time.Hour})
	require.NoError(t, err)

	token, _, err := other.GenerateToken(access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleAdmin})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
}

func TestValidateTampered(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.GenerateToken(access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleStaff})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Re-sign a forged payload with a different key and splice it in
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: uuid.New().String(),
		Role:   string(access.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	forgedString, err := forged.SignedString([]byte("attacker"))
	require.NoError(t, err)
	forgedParts := strings.Split(forgedString, ".")

	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = m.ValidateToken(spliced)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{
		UserID: uuid.New().String(),
		Role:   string(access.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
}

func TestValidateRequiresExpiry(t *testing.T) {
	m := newTestManager(t)
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID:           uuid.New().String(),
		Role:             string(access.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	})
	token, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
}

func TestValidateMalformed(t *testing.T) {
	m := newTestManager(t)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := m.ValidateToken(tok)
		assert.True(t, apperror.Is(err, apperror.KindInvalidCredential), tok)
	}
}

func TestValidateMalformedUserID(t *testing.T) {
	m := newTestManager(t)
	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: "42",
		Role:   string(access.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := bad.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(Config{Expiration: time.Hour})
	assert.Error(t, err)
}
