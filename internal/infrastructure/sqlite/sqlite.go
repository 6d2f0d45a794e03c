// Package sqlite is the embedded storage backend selected with STORAGE=sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct{ SQL *sql.DB }

// Open opens (creating if needed) the database file at path and applies the
// schema.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := &DB{SQL: sqldb}
	if err := db.migrate(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return db, nil
}

func (d *DB) Close() error                   { return d.SQL.Close() }
func (d *DB) Ping(ctx context.Context) error { return d.SQL.PingContext(ctx) }

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS currency_pair (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_currency TEXT NOT NULL CHECK (length(from_currency) = 3),
			to_currency TEXT NOT NULL CHECK (length(to_currency) = 3)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_currency_pair_codes ON currency_pair (from_currency, to_currency);`,
	}
	for _, t := range []struct{ table, anchor, index string }{
		{"exchange_rate", "date", "idx_date_currency_pair"},
		{"weekly_exchange_rate", "week_start", "idx_week_start_currency_pair"},
		{"monthly_exchange_rate", "month_start", "idx_month_start_currency_pair"},
	} {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			currency_pair_id INTEGER NOT NULL REFERENCES currency_pair(id),
			%s TEXT NOT NULL,
			open_price REAL,
			high_price REAL,
			low_price REAL,
			close_price REAL
		);`, t.table, t.anchor),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (currency_pair_id, %s);`, t.index, t.table, t.anchor),
		)
	}
	for _, s := range stmts {
		if _, err := d.SQL.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
