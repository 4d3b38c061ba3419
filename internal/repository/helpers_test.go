package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/pkg/database"
)

// setupTestDB opens a private in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupRepos(t *testing.T) (*gorm.DB, *Repositories) {
	t.Helper()
	db := setupTestDB(t)
	repos, err := New(db)
	require.NoError(t, err)
	return db, repos
}

// createTenant inserts an active tenant and returns a Manager identity in it
func createTenant(t *testing.T, repos *Repositories, name string) access.Identity {
	t.Helper()
	tenant := &model.Tenant{Name: name, Active: true}
	require.NoError(t, repos.Tenants.Create(context.Background(), tenant))
	return access.Identity{UserID: uuid.New(), TenantID: tenant.ID, Role: access.RoleManager}
}
