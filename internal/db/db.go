package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crunchpunch/internal/catalog"
	"crunchpunch/internal/config"
	"crunchpunch/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Nutrition{},
		&models.Food{},
		&models.Salad{},
		&models.SaladIngredient{},
		&models.Mixture{},
		&models.MixtureIngredient{},
		&models.Company{},
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	gormCfg := &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	return db.AutoMigrate(Models()...)
}

func Configure(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(database); err != nil {
		return nil, err
	}

	return database, nil
}

// CodeExists returns a catalog.CodeExists backed by the code column of model,
// counting soft-deleted rows so generated codes never collide.
func CodeExists(ctx context.Context, db *gorm.DB, model any) catalog.CodeExists {
	return func(code string) (bool, error) {
		var count int64
		if err := db.WithContext(ctx).Unscoped().Model(model).Where("code = ?", code).Count(&count).Error; err != nil {
			return false, fmt.Errorf("check code %s: %w", code, err)
		}
		return count > 0, nil
	}
}
