package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"foodlens/internal/common/config"
	apperrors "foodlens/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// SQLite
// ==========================

func TestOpenSQLite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "foodlens.db")

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
	assert.FileExists(t, path)
}

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE t (k TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t VALUES ('a')")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

// ==========================
// Postgres
// ==========================

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db.local",
		Port:     5433,
		Database: "foodlens",
		User:     "app",
		Password: "p@ss word",
		SSLMode:  "disable",
	}, "foodlens")

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.local:5433", u.Host)
	assert.Equal(t, "/foodlens", u.Path)
	assert.Equal(t, "app", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "5", u.Query().Get("connect_timeout"))
	assert.Equal(t, "foodlens", u.Query().Get("application_name"))
}

func TestPostgresDSN_NoPassword(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{Host: "h", Port: 5432, Database: "d", User: "u", SSLMode: "require"}, "")

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	_, set := u.User.Password()
	assert.False(t, set)
	assert.Empty(t, u.Query().Get("application_name"))
}

// ==========================
// Redis
// ==========================

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := OpenRedis(context.Background(), config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), config.RedisConfig{Address: addr})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStorage))
}

// ==========================
// Elasticsearch
// ==========================

func createTestIndexServer(t *testing.T, existing string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		if r.Method == http.MethodHead && r.URL.Path == "/"+existing {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckIndex(t *testing.T) {
	server := createTestIndexServer(t, "health_guidance")

	client, err := NewElasticsearchClient(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)

	assert.NoError(t, CheckIndex(context.Background(), client, "health_guidance"))

	err = CheckIndex(context.Background(), client, "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTransport))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestNewElasticsearchClient_NoAddresses(t *testing.T) {
	_, err := NewElasticsearchClient(config.ElasticsearchConfig{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}
