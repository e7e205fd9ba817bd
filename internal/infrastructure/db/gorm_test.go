package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm/logger"

	"doc-compliance/internal/config"
	"doc-compliance/internal/domain/requirement"
)

func TestOpenWithDialector_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New() // pings are not monitored
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing()

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true, // don't query @@version
	})

	gdb, err := OpenWithDialector(dial, logger.Discard)
	if err != nil {
		t.Fatalf("OpenWithDialector error: %v", err)
	}
	if gdb == nil {
		t.Fatalf("got nil gorm.DB")
	}
	if !gdb.Config.TranslateError {
		t.Fatalf("TranslateError must be enabled")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenWithDialector_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing().WillReturnError(errors.New("no ping"))

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := OpenWithDialector(dial, logger.Discard)
	if err == nil {
		t.Fatalf("expected error, got nil (gdb=%v)", gdb)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "c.db")}
	gdb, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !gdb.Migrator().HasTable(&requirement.Requirement{}) {
		t.Fatalf("requirements table missing after migrate")
	}
	// idempotent
	if err := Migrate(gdb); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(&config.Config{DBDriver: "oracle"}, nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
