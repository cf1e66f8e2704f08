// Package database provides the shared GORM database handle.
package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database is the process-wide handle to the underlying SQLite store.
// It is created once and injected into every store that needs it.
type Database interface {
	// Session returns a GORM session bound to ctx.
	Session(ctx context.Context) *gorm.DB

	// GORM returns the raw GORM handle (migrations, schema checks).
	GORM() *gorm.DB

	// Close closes the underlying connection pool.
	Close() error
}

type gormDatabase struct {
	db *gorm.DB
}

// NewDatabase opens a SQLite database from a URL of the form
// "sqlite:///path/to/db" or "sqlite:///:memory:". A bare filesystem path is
// also accepted.
func NewDatabase(ctx context.Context, url string) (Database, error) {
	dsn := sqliteDSN(url)
	if dsn == "" {
		return nil, fmt.Errorf("open database: empty database URL")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: slogGormLogger{},
	})
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database %q: %w", dsn, err)
	}

	// SQLite serializes writers internally; a single connection avoids
	// SQLITE_BUSY under concurrent reconciliation passes.
	sqlDB.SetMaxOpenConns(1)

	return &gormDatabase{db: db}, nil
}

// sqliteDSN strips the sqlite:// URL scheme, leaving the filesystem path.
func sqliteDSN(url string) string {
	switch {
	case strings.HasPrefix(url, "sqlite:///"):
		return strings.TrimPrefix(url, "sqlite:///")
	case strings.HasPrefix(url, "sqlite://"):
		return strings.TrimPrefix(url, "sqlite://")
	default:
		return url
	}
}

func (d *gormDatabase) Session(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

func (d *gormDatabase) GORM() *gorm.DB {
	return d.db
}

func (d *gormDatabase) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
