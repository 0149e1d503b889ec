package database

import (
	"b3flip/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDBConnection connects to postgres and migrates the session table.
// It returns nil when no DATABASE_URL is configured.
func NewDBConnection(appConfig *config.AppConfig, logger *zap.Logger) *gorm.DB {
	connectionString := appConfig.DatabaseURL
	if connectionString == "" {
		logger.Info("DATABASE_URL not set, bitflip sessions will not be persisted")
		return nil
	}
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := db.AutoMigrate(&BitflipSession{}); err != nil {
		logger.Fatal("failed to migrate bitflip sessions", zap.Error(err))
	}
	logger.Debug("connected to database")
	return db
}
