package database

import (
	"os"

	"merit/config"
	"merit/internal/domain"
	"merit/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true, // duplicate-key detection backs ledger idempotency
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}

// SeedAdmin creates the bootstrap admin account if no admin exists.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin-change-me"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("[seed] admin password hash failed")
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@merit.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.WithError(err).Error("[seed] admin create failed")
		return
	}
	log.Info("[seed] bootstrap admin created")
}

// LoadPolicyRules parses a YAML ruleset file, used to seed policy v1 on an
// empty database.
func LoadPolicyRules(path string) (models.PolicyRules, error) {
	var rules models.PolicyRules
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, err
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, err
	}
	return rules, nil
}
