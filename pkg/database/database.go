package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/pkg/config"
)

// Open connects to PostgreSQL with the configured pool settings.
// The returned handle is passed to repositories explicitly.
func Open(dbConfig *config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(dbConfig.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database object: %w", err)
	}

	// Set connection pool settings from config
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	log.Info("Database connected",
		zap.String("host", dbConfig.Host),
		zap.String("db_name", dbConfig.DBName))
	return db, nil
}

// Models lists every table the service owns
func Models() []interface{} {
	return []interface{}{
		&model.Tenant{},
		&model.User{},
		&model.WorkOrder{},
		&model.Customer{},
		&model.InventoryItem{},
		&model.Invoice{},
	}
}

// uniqueIndexes are scoped per tenant: tenant_id always leads the key
var uniqueIndexes = []struct {
	name    string
	table   string
	columns string
}{
	{"idx_users_tenant_email", "users", "tenant_id, email"},
	{"idx_inventory_items_tenant_sku", "inventory_items", "tenant_id, sku"},
	{"idx_invoices_tenant_number", "invoices", "tenant_id, number"},
}

// Migrate creates or updates the schema and the per-tenant unique indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	for _, idx := range uniqueIndexes {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}
