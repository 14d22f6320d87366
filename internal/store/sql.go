package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects placeholder syntax for the SQL store.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// SQLStore keeps the key space in a two-column table. Both SQLite and Postgres
// accept the same upsert form; only the placeholders differ.
type SQLStore struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

func NewSQLStore(db *sql.DB, table string, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, table: table, dialect: dialect}
}

// Migrate creates the backing table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (item_key TEXT PRIMARY KEY, item_value TEXT NOT NULL)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore) ph(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	q := fmt.Sprintf(`SELECT item_value FROM %s WHERE item_key = %s`, s.table, s.ph(1))

	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	q := fmt.Sprintf(
		`INSERT INTO %s (item_key, item_value) VALUES (%s, %s) ON CONFLICT (item_key) DO UPDATE SET item_value = excluded.item_value`,
		s.table, s.ph(1), s.ph(2),
	)
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE item_key = %s`, s.table, s.ph(1))
	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) ListKeys(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`SELECT item_key FROM %s ORDER BY item_key`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	q := fmt.Sprintf(`DELETE FROM %s`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("clear %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
