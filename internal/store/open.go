package store

import (
	"context"
	"database/sql"
	"fmt"

	"foodlens/internal/common/config"
	"foodlens/internal/common/database"
)

// Open builds the configured backend and makes sure its schema exists.
func Open(ctx context.Context, cfg *config.Config) (KeyValueStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return NewMemoryStore(), nil

	case config.StorageSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, db, cfg.Storage.Table, DialectSQLite)

	case config.StoragePostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database.Postgres, cfg.App.Name)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, db, cfg.Storage.Table, DialectPostgres)

	case config.StorageRedis:
		client, err := database.OpenRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Storage.Namespace), nil
	}

	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
}

func migrated(ctx context.Context, db *sql.DB, table string, dialect Dialect) (*SQLStore, error) {
	s := NewSQLStore(db, table, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
