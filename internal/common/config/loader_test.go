package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Defaults
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, "foodlens:", cfg.Storage.Namespace)
	assert.Equal(t, "kv_store", cfg.Storage.Table)
	assert.Equal(t, "foodlens.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, SearchSerpAPI, cfg.APIs.WebSearch.Backend)
	assert.Equal(t, "gpt-4.1", cfg.APIs.GenAI.Model)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, 10, cfg.Search.CandidateCount)
	assert.Equal(t, DefaultExcludedDomains, cfg.Search.ExcludedDomains)
	assert.Equal(t, []string{".pdf"}, cfg.Search.ExcludedExtensions)
	assert.Equal(t, " allergy", cfg.Search.AllergySuffix)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "us-east-1", cfg.Notifications.SES.Region)
}

func TestLoadFromFile_WorkerDefaultsInherited(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  max_jobs_active: 7
  timeout: 30000
workers:
  analyze-food:
    enabled: false
  enrich-health-profile:
    enabled: true
    timeout: 90000
`))
	require.NoError(t, err)

	af := GetWorkerConfig(cfg, "analyze-food")
	assert.False(t, af.Enabled)
	assert.Equal(t, 7, af.MaxJobsActive)
	assert.Equal(t, 30000, af.Timeout)
	assert.False(t, IsWorkerEnabled(cfg, "analyze-food"))

	ehp := GetWorkerConfig(cfg, "enrich-health-profile")
	assert.Equal(t, 90000, ehp.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "enrich-health-profile"))

	unknown := GetWorkerConfig(cfg, "not-configured")
	assert.True(t, unknown.Enabled)
	assert.Equal(t, 7, unknown.MaxJobsActive)
	assert.True(t, IsWorkerEnabled(cfg, "not-configured"))
}

// ==========================
// Environment
// ==========================

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("FOODLENS_TEST_KEY", "sk-test")

	cfg, err := LoadFromFile(writeConfig(t, "apis:\n  genai:\n    api_key: ${FOODLENS_TEST_KEY}\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIs.GenAI.APIKey)
}

func TestLoadFromFile_KeyFallbackFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("SERPAPI_API_KEY", "serp-env")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.APIs.GenAI.APIKey)
	assert.Equal(t, "serp-env", cfg.APIs.WebSearch.APIKey)
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown storage backend",
			body:    "storage:\n  backend: etcd\n",
			wantErr: `unknown storage.backend "etcd"`,
		},
		{
			name:    "postgres without host",
			body:    "storage:\n  backend: postgres\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "redis without address",
			body:    "storage:\n  backend: redis\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "elasticsearch without addresses",
			body:    "apis:\n  web_search:\n    backend: elasticsearch\n",
			wantErr: "database.elasticsearch.addresses is required",
		},
		{
			name:    "unknown search backend",
			body:    "apis:\n  web_search:\n    backend: bing\n",
			wantErr: `unknown apis.web_search.backend "bing"`,
		},
		{
			name:    "max results above candidates",
			body:    "search:\n  max_results: 12\n  candidate_count: 10\n",
			wantErr: "search.max_results (12) cannot exceed search.candidate_count (10)",
		},
		{
			name:    "ses without sender",
			body:    "notifications:\n  ses:\n    enabled: true\n",
			wantErr: "notifications.ses.from_email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
