package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
)

type stubVerifier struct {
	ident access.Identity
	err   error
	seen  string
}

func (s *stubVerifier) ValidateToken(token string) (access.Identity, error) {
	s.seen = token
	return s.ident, s.err
}

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func TestAuthMiddleware(t *testing.T) {
	ident := access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleManager}

	t.Run("valid bearer attaches identity", func(t *testing.T) {
		verifier := &stubVerifier{ident: ident}
		c, rec := newContext("Bearer abc.def.ghi")

		var got access.Identity
		err := AuthMiddleware(verifier)(func(c echo.Context) error {
			var ok bool
			got, ok = IdentityFrom(c)
			require.True(t, ok)
			fromCtx, ok := access.FromContext(c.Request().Context())
			require.True(t, ok)
			assert.Equal(t, got, fromCtx)
			return okHandler(c)
		})(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, ident, got)
		assert.Equal(t, "abc.def.ghi", verifier.seen)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		c, _ := newContext("bearer token")
		require.NoError(t, AuthMiddleware(&stubVerifier{ident: ident})(okHandler)(c))
	})

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic dXNlcjpwYXNz",
		"empty token":    "Bearer   ",
		"no separator":   "Bearertoken",
	} {
		t.Run(name, func(t *testing.T) {
			verifier := &stubVerifier{ident: ident}
			c, _ := newContext(header)
			called := false

			err := AuthMiddleware(verifier)(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			assert.True(t, apperror.Is(err, apperror.KindAuthenticationRequired))
			assert.False(t, called)
			assert.Empty(t, verifier.seen)
		})
	}

	t.Run("rejected token", func(t *testing.T) {
		c, _ := newContext("Bearer forged")
		called := false

		err := AuthMiddleware(&stubVerifier{err: errors.New("signature is invalid")})(func(c echo.Context) error {
			called = true
			return nil
		})(c)

		assert.True(t, apperror.Is(err, apperror.KindInvalidCredential))
		assert.Equal(t, http.StatusUnauthorized, apperror.KindOf(err).Status())
		assert.False(t, called)
		_, ok := IdentityFrom(c)
		assert.False(t, ok)
	})
}

func TestRequireTenantContext(t *testing.T) {
	t.Run("no identity", func(t *testing.T) {
		c, _ := newContext("")
		err := RequireTenantContext(okHandler)(c)
		assert.True(t, apperror.Is(err, apperror.KindAuthenticationRequired))
	})

	t.Run("identity without tenant", func(t *testing.T) {
		c, _ := newContext("")
		SetIdentity(c, access.Identity{UserID: uuid.New(), Role: access.RoleAdmin})
		err := RequireTenantContext(okHandler)(c)
		assert.True(t, apperror.Is(err, apperror.KindTenantContextMissing))
		assert.Equal(t, http.StatusForbidden, apperror.KindOf(err).Status())
	})

	t.Run("identity with tenant", func(t *testing.T) {
		c, rec := newContext("")
		SetIdentity(c, access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: access.RoleStaff})
		require.NoError(t, RequireTenantContext(okHandler)(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name    string
		role    access.Role
		perm    access.Permission
		allowed bool
	}{
		{"staff reads records", access.RoleStaff, access.PermRecordsRead, true},
		{"staff cannot delete", access.RoleStaff, access.PermRecordsDelete, false},
		{"manager deletes", access.RoleManager, access.PermRecordsDelete, true},
		{"manager cannot administer tenants", access.RoleManager, access.PermTenantsAdmin, false},
		{"admin administers tenants", access.RoleAdmin, access.PermTenantsAdmin, true},
		{"unknown role denied", access.Role("Owner"), access.PermRecordsRead, false},
		{"undeclared permission denied", access.RoleAdmin, access.Permission("records:purge"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("")
			SetIdentity(c, access.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: tt.role})

			err := RequirePermission(tt.perm)(okHandler)(c)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindInsufficientPermissions), "got %v", err)
		})
	}

	t.Run("no identity", func(t *testing.T) {
		c, _ := newContext("")
		err := RequirePermission(access.PermRecordsRead)(okHandler)(c)
		assert.True(t, apperror.Is(err, apperror.KindAuthenticationRequired))
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		c, rec := newContext("")
		require.NoError(t, RequestIDMiddleware(okHandler)(c))
		id := rec.Header().Get(RequestIDKey)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, c.Get(RequestIDKey))
	})

	t.Run("propagated", func(t *testing.T) {
		c, rec := newContext("")
		c.Request().Header.Set(RequestIDKey, "req-123")
		require.NoError(t, RequestIDMiddleware(okHandler)(c))
		assert.Equal(t, "req-123", rec.Header().Get(RequestIDKey))
	})
}
