package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thidaswick/WorqHub/internal/model"
)

func TestMigrateCreatesTenantUniqueIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	// Running twice is a no-op
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	for _, idx := range uniqueIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.table, idx.name), idx.name)
	}

	tenantA, tenantB := uuid.New(), uuid.New()
	insert := func(tenant uuid.UUID) error {
		item := &model.InventoryItem{SKU: "SKU-1", Name: "Valve"}
		item.TenantID = tenant
		return db.Create(item).Error
	}
	require.NoError(t, insert(tenantA))
	require.NoError(t, insert(tenantB))
	assert.ErrorIs(t, insert(tenantA), gorm.ErrDuplicatedKey)
}
