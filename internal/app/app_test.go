package app

import (
	"context"
	"testing"

	"foodlens/internal/common/config"
	"foodlens/internal/common/logger"
	"foodlens/internal/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Backend = config.StorageMemory
	cfg.APIs.GenAI.BaseURL = "http://127.0.0.1:0"
	cfg.APIs.GenAI.Model = "test-model"
	cfg.APIs.GenAI.Timeout = 1000
	cfg.APIs.WebSearch.Backend = config.SearchSerpAPI
	cfg.APIs.WebSearch.BaseURL = "http://127.0.0.1:0"
	cfg.APIs.WebSearch.Engine = "google"
	cfg.APIs.WebSearch.Timeout = 1000
	cfg.APIs.PageFetch.Timeout = 1000
	cfg.APIs.PageFetch.MaxBytes = 1024
	cfg.Search.MaxResults = 3
	cfg.Search.CandidateCount = 10
	cfg.Search.AllergySuffix = " allergy"
	return cfg
}

func TestBuild_WithoutKeys(t *testing.T) {
	a, err := Build(context.Background(), createTestConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.FirstRun)
	assert.False(t, a.KeysConfigured())
	assert.Nil(t, a.Mailer)
	assert.NotNil(t, a.Profiles)
	assert.NotNil(t, a.Orchestrator)
	assert.Equal(t, "serpapi", a.Backend.Name())
}

func TestBuild_ConfigKeysAsFallback(t *testing.T) {
	cfg := createTestConfig()
	cfg.APIs.GenAI.APIKey = "sk-config"
	cfg.APIs.WebSearch.APIKey = "serp-config"

	a, err := Build(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.KeysConfigured())
	assert.Equal(t, "sk-config", a.Keys.OpenAI)
}

func TestApp_UseKeys(t *testing.T) {
	a, err := Build(context.Background(), createTestConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	keys := credentials.Keys{OpenAI: "sk-new", SerpAPI: "serp-new"}
	require.NoError(t, a.Credentials.Save(ctx, keys))
	require.NoError(t, a.UseKeys(context.Background(), keys))

	assert.True(t, a.KeysConfigured())
	stored, err := a.Credentials.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys, stored)
}
