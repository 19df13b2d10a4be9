package db

import (
	"os"
	"placescout/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=placescout port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}

	zap.L().Info("database connection established")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Place{},
		&models.Favorite{},
		&models.Comment{},
		&models.Vote{},
		&models.Notification{},
	)
	if err != nil {
		zap.L().Fatal("failed to migrate database", zap.Error(err))
	}
	zap.L().Info("database migration completed")
}
