package datastore

import (
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/logging"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow. Migration batch queries can approach this on small
// hardware, so the limit is deliberately generous.
const DefaultSlowQueryThreshold = 1 * time.Second

// GetLogger returns the datastore service logger.
func GetLogger() *slog.Logger {
	return logging.ForService("datastore")
}

// createGormLogger configures and returns a new GORM logger instance.
// Verbosity follows the process-wide debug setting.
func createGormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	if s := conf.Setting(); s != nil && s.Debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, dbType string) error {
	migrationStart := time.Now()
	log := GetLogger().With("db_type", dbType)

	log.Debug("starting database migration")

	if err := db.AutoMigrate(&Prediction{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Context("db_type", dbType).
			Context("table", "predictions").
			Build()
	}

	log.Debug("database migration completed",
		"duration", time.Since(migrationStart))

	return nil
}
