package db

import (
	"time"

	"github.com/legendsansar/legendsansar/pkg/logger"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// WithLogger routes GORM's own logging into the application log file.
func WithLogger(log *logger.Logger) DBOption {
	return func(gormDB *gorm.DB) error {
		gormDB.Config.Logger = gormLogger.New(
			log.Log,
			gormLogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
		return nil
	}
}
