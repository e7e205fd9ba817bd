package db

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"doc-compliance/internal/config"
	"doc-compliance/internal/domain/doctype"
	"doc-compliance/internal/domain/requirement"
)

// Open connects to the database selected by DB_DRIVER.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var dial gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dial = mysql.Open(cfg.MySQLDSN())
	case config.DriverSQLite:
		dial = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	db, err := OpenWithDialector(dial, gormLogger(log, cfg.SlogLevel()))
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
	}
	log.Info("gorm: connected", slog.String("driver", cfg.DBDriver))
	return db, nil
}

// OpenWithDialector opens, tunes the pool and pings.
func OpenWithDialector(dial gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: l,
		// Duplicate-key errors surface as gorm.ErrDuplicatedKey on every driver.
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables backing the domain models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&doctype.DocumentType{}, &requirement.Requirement{})
}

// gormLogger routes gorm's output through slog at a level derived from ours.
func gormLogger(l *slog.Logger, level slog.Level) logger.Interface {
	lvl := logger.Warn
	switch {
	case level <= slog.LevelDebug:
		lvl = logger.Info
	case level >= slog.LevelError:
		lvl = logger.Error
	}
	return logger.New(slog.NewLogLogger(l.Handler(), slog.LevelDebug), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
