package db

import (
	"context"

	"github.com/legendsansar/legendsansar/pkg/logger"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type DBOption func(*gorm.DB) error

// NewDB opens the PostgreSQL connection and migrates the given models.
func NewDB(ctx context.Context, dsn string, models []interface{}, opts ...DBOption) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "DB initialization canceled")
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to connect to database")
	}

	for _, opt := range opts {
		if err := opt(gormDB); err != nil {
			return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to apply DB option")
		}
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(models...); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to migrate models")
	}

	return gormDB, nil
}

// CloseDB releases the underlying connection pool.
func CloseDB(gormDB *gorm.DB, log *logger.Logger) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to get DB handle for closing")
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to close database")
	}
	if err := sqlDB.Close(); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("PostgreSQL database close failed")
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to close database")
	}
	log.Info(context.Background()).Logs("PostgreSQL database connection closed")
	return nil
}
