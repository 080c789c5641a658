package db

import (
	"time"

	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/utils"
	"gorm.io/driver/postgres"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDb(url string, log *utils.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Error),
	})

	if err != nil {
		return nil, err
	}

	log.Info("database connection established")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB, log *utils.Logger) error {
	log.Info("migrating database...")

	entities := []interface{}{
		&models.User{},
		&models.Wallet{},
		&models.Challenge{},
		&models.Transaction{},
		&models.OperationRequest{},
		&models.RecurringMovement{},
		&models.Notification{},
		&models.PushSubscription{},
	}

	if err := db.AutoMigrate(entities...); err != nil {
		log.Errorf("failed to migrate database: %v", err)
		return err
	}

	return nil
}
