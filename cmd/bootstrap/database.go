// Package bootstrap wires up the database for the server binary.
package bootstrap

import (
	"fmt"
	"io"
	stdlog "log"
	"time"

	"github.com/coldline-crm/coldline/internal/models"
	"github.com/coldline-crm/coldline/pkg/config"
	"github.com/coldline-crm/coldline/pkg/logger"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls database initialization behavior
type Options struct {
	// AutoMigrate whether to execute entity migration (default true)
	AutoMigrate bool
}

// SetupDatabase 统一入口：连接数据库 -> 迁移实体
func SetupDatabase(logWriter io.Writer, opts *Options) (*gorm.DB, error) {
	if opts == nil {
		opts = &Options{AutoMigrate: true}
	}

	db, err := initDBConn(logWriter)
	if err != nil {
		logger.Error("init database failed", zap.Error(err))
		return nil, err
	}

	if opts.AutoMigrate {
		if err := RunMigrations(db); err != nil {
			logger.Error("migration failed", zap.Error(err))
			return nil, err
		}
		logger.Info("migration success",
			zap.String("database", config.GlobalConfig.DBDriver),
			zap.String("dsn", config.GlobalConfig.DSN),
		)
	}

	logger.Info("system bootstrap - database initialization complete")
	return db, nil
}

// initDBConn 根据全局配置创建 *gorm.DB
func initDBConn(logWriter io.Writer) (*gorm.DB, error) {
	driver := config.GlobalConfig.DBDriver
	dsn := config.GlobalConfig.DSN

	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	gormLog := gormlogger.New(
		stdlog.New(logWriter, "\r\n", stdlog.LstdFlags),
		gormlogger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlogger.Warn,
			Colorful:      false,
		},
	)
	return gorm.Open(dialector, &gorm.Config{Logger: gormLog})
}

// RunMigrations 执行实体迁移
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	return db.AutoMigrate(models.AllModels()...)
}
