package database

import (
	"fmt"
	"time"

	"erp-backend/internal/config"
	"erp-backend/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured driver without touching the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("desteklenmeyen veritabanı sürücüsü: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// unique index ihlalleri gorm.ErrDuplicatedKey olarak döner
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("veritabanı bağlantısı alınamadı: %w", err)
	}
	if driver == "sqlite" {
		// in-memory sqlite her bağlantıda ayrı bir veritabanı açar
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// Init opens the connection, migrates it and installs it as DB.
func Init(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db
	zap.L().Info("veritabanı bağlantısı başarılı, migration tamamlandı", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

// Migrate creates the tables and makes sure the company settings row exists.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.InventoryItem{},
		&models.PurchaseRequest{},
		&models.ProductionPlan{},
		&models.ProductionPlanMaterial{},
		&models.ShippingPlan{},
		&models.ShippingPlanItem{},
		&models.CompanySettings{},
		&models.Category{},
		&models.Employee{},
		&models.Priority{},
		&models.Status{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	settings := models.CompanySettings{
		ID:         models.CompanySettingsID,
		Currency:   "KRW",
		Timezone:   "Asia/Seoul",
		DateFormat: "YYYY-MM-DD",
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return fmt.Errorf("şirket ayarları satırı oluşturulamadı: %w", err)
	}
	return nil
}
