package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database instead of a file.
const MemoryPath = ":memory:"

func OpenSQLite(dbPath string, now func() time.Time) (*gorm.DB, error) {
	database, _, err := openSQLite(dbPath, now)
	return database, err
}

func openSQLite(dbPath string, now func() time.Time) (*gorm.DB, MigrationReport, error) {
	dsn := MemoryPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, MigrationReport{}, fmt.Errorf("create db directory: %w", err)
		}
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	}

	config := &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
	if now != nil {
		config.NowFunc = func() time.Time { return now().UTC() }
	}

	database, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, MigrationReport{}, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection per target: an in-memory database lives only as
	// long as its connection, and SQLite has a single writer anyway.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, MigrationReport{}, fmt.Errorf("open sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	report, err := applyEmbeddedMigrations(database)
	if err != nil {
		_ = sqlDB.Close()
		return nil, report, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, report, nil
}
