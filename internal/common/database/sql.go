package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"foodlens/internal/common/config"
	apperrors "foodlens/internal/common/errors"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// sqlitePragmas are applied to the single connection of a file database.
var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// OpenSQLite opens the local database file, creating its directory when
// needed. ":memory:" yields a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, apperrors.NewValidationError("sqlite path is empty")
	}
	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, apperrors.NewStorageError("open", fmt.Errorf("create %s: %w", dir, err))
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("open", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	err = verify(ctx, db, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if path == memoryPath {
			return nil
		}
		for _, p := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
		return nil
	}, storageErr("open"))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// PostgresDSN renders cfg as a libpq URL tagged with the application name.
func PostgresDSN(cfg config.PostgresConfig, appName string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}

	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	q.Set("connect_timeout", fmt.Sprintf("%d", int(ConnectTimeout/time.Second)))
	if appName != "" {
		q.Set("application_name", appName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPostgres opens a pooled connection and checks the server answers.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig, appName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", PostgresDSN(cfg, appName))
	if err != nil {
		return nil, apperrors.NewStorageError("open", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := verify(ctx, db, db.PingContext, storageErr("connect")); err != nil {
		return nil, err
	}
	return db, nil
}
