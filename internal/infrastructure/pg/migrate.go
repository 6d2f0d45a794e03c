package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"fxhistory-service/internal/infrastructure/logx"
)

//go:embed migrations/*.sql
var fs embed.FS

const (
	pingAttempts = 30
	pingInterval = 500 * time.Millisecond
)

// RunMigrations applies the embedded schema migrations, waiting for the
// database to accept connections first.
func RunMigrations(ctx context.Context, db *DB) error {
	src, err := iofs.New(fs, "migrations")
	if err != nil {
		return fmt.Errorf("migrate src: %w", err)
	}
	sqldb, err := sql.Open("pgx", db.Pool.Config().ConnString())
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()

	if err := waitForDB(ctx, sqldb); err != nil {
		return err
	}
	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logx.L().Info("migrate.no_change")
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	default:
		v, _, _ := m.Version()
		logx.L().Info("migrate.applied", zap.Uint("version", v))
	}
	return nil
}

func waitForDB(ctx context.Context, sqldb *sql.DB) error {
	var err error
	for i := 0; i < pingAttempts; i++ {
		if err = sqldb.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping db: %w", ctx.Err())
		case <-time.After(pingInterval):
		}
	}
	return fmt.Errorf("ping db: %w", err)
}
