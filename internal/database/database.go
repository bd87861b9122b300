package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/database/borrows"
	"github.com/mrlokans/lending/internal/database/ledger"
	"github.com/mrlokans/lending/internal/entities"
)

// activeBorrowIndex enforces at most one unreturned record per (book, user).
const activeBorrowIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_active_borrow
	ON borrow_records(book_id, user_id) WHERE is_returned = 0`

type Database struct {
	DB *gorm.DB
}

// Options tunes the connection. The zero value logs warnings only.
type Options struct {
	LogLevel logger.LogLevel
}

// ParseLogLevel maps a config string to a gorm log level, defaulting to Warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithOptions(dbPath, Options{LogLevel: logger.Warn})
}

func NewDatabaseWithOptions(dbPath string, opts Options) (*Database, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	dsn := dbPath + "?_journal=WAL&_timeout=5000&_busy_timeout=5000&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer. One pooled connection serializes every
	// transaction, so ledger check-and-update steps never interleave.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Category{},
		&entities.Book{},
		&entities.BorrowRecord{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.Exec(activeBorrowIndex).Error; err != nil {
		return nil, fmt.Errorf("failed to create active borrow index: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks database connectivity.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ borrow.UnitOfWork = (*Database)(nil)

// Atomically runs fn inside one transaction. The ledger and record store handed to
// fn are bound to that transaction; any error rolls both back.
func (d *Database) Atomically(ctx context.Context, fn func(tx borrow.Tx) error) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txScope{
			ledger:  ledger.NewRepository(tx),
			records: borrows.NewRepository(tx),
		})
	})
}

type txScope struct {
	ledger  *ledger.Repository
	records *borrows.Repository
}

func (s txScope) Ledger() borrow.Ledger {
	return s.ledger
}

func (s txScope) Records() borrow.RecordStore {
	return s.records
}
