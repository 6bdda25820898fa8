package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL event stores
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL event stores
)

const (
	driverMySQL    = "mysql"
	driverPostgres = "postgres"
)

// New creates a new database connection (supports both MySQL and PostgreSQL)
func New(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	driver, dsn := driverFor(databaseURL)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// driverFor picks the driver from the URL scheme. MySQL URLs may be given as
// mysql://dsn, the prefix is stripped since the driver expects a bare DSN.
func driverFor(databaseURL string) (driver, dsn string) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return driverPostgres, databaseURL
	}
	return driverMySQL, withParseTime(strings.TrimPrefix(databaseURL, "mysql://"))
}

// withParseTime makes the MySQL driver scan DATETIME columns into time.Time
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// ExecuteReadOnlyQuery executes a query within a read-only transaction
func ExecuteReadOnlyQuery(ctx context.Context, db *sqlx.DB, dest interface{}, query string, args ...interface{}) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // read-only transactions are never committed

	if err := tx.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("failed to execute read-only query: %w", err)
	}
	return nil
}

// ExecuteReadOnlyQuerySingle executes a single-row query within a read-only transaction
func ExecuteReadOnlyQuerySingle(ctx context.Context, db *sqlx.DB, dest interface{}, query string, args ...interface{}) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.GetContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("failed to execute read-only query: %w", err)
	}
	return nil
}

// ExecuteReadOnlyPing executes a ping within a read-only transaction
func ExecuteReadOnlyPing(ctx context.Context, db *sqlx.DB) error {
	var result int
	if err := ExecuteReadOnlyQuerySingle(ctx, db, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
