package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storeops/backend/internal/infrastructure/persistence/models"
)

// setupTestDB opens an in-memory sqlite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.BranchModel{},
		&models.CashSessionModel{},
		&models.SaleModel{},
		&models.SaleLineModel{},
		&models.OperationLogModel{},
		&models.AuditLogModel{},
		&models.OutboxEventModel{},
	))
	return db
}
