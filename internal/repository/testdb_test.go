package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"merit/internal/models"
)

// newTestDB opens an in-memory sqlite database with all tables migrated.
// MaxOpenConns is pinned to 1 so every query sees the same in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Suspension{},
		&models.Policy{},
		&models.Action{},
		&models.Evidence{},
		&models.FraudSignal{},
		&models.DeviceRegistry{},
		&models.DailyTracking{},
		&models.Wallet{},
		&models.WalletTransaction{},
	))
	return db
}
