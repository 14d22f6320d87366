// Package credentials persists the API keys for the completion and search
// backends next to the rest of the local data.
package credentials

import (
	"context"
	"errors"
	"strings"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/completion"
	"foodlens/internal/search"
	"foodlens/internal/store"
)

const (
	KeyOpenAI  = "api_key_openai"
	KeySerpAPI = "api_key_serpapi"
)

type Keys struct {
	OpenAI  string
	SerpAPI string
}

// Mask hides all but the last four characters of a key.
func Mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

type Manager struct {
	kv                store.KeyValueStore
	fallback          Keys
	searchKeyRequired bool
	logger            logger.Logger
}

// NewManager builds a manager. fallback supplies keys from configuration when
// none were stored; searchKeyRequired is false for backends that need no key.
func NewManager(kv store.KeyValueStore, fallback Keys, searchKeyRequired bool, log logger.Logger) *Manager {
	return &Manager{
		kv:                kv,
		fallback:          fallback,
		searchKeyRequired: searchKeyRequired,
		logger:            logger.Component(log, "credentials"),
	}
}

func (m *Manager) Load(ctx context.Context) (Keys, error) {
	openai, err := m.get(ctx, KeyOpenAI)
	if err != nil {
		return Keys{}, err
	}
	serp, err := m.get(ctx, KeySerpAPI)
	if err != nil {
		return Keys{}, err
	}

	keys := Keys{OpenAI: openai, SerpAPI: serp}
	if keys.OpenAI == "" {
		keys.OpenAI = m.fallback.OpenAI
	}
	if keys.SerpAPI == "" {
		keys.SerpAPI = m.fallback.SerpAPI
	}
	return keys, nil
}

func (m *Manager) get(ctx context.Context, key string) (string, error) {
	v, err := m.kv.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewStorageError("load credentials", err)
	}
	return v, nil
}

func (m *Manager) Save(ctx context.Context, keys Keys) error {
	keys.OpenAI = strings.TrimSpace(keys.OpenAI)
	keys.SerpAPI = strings.TrimSpace(keys.SerpAPI)
	if !m.Configured(keys) {
		return apperrors.NewValidationError("all required API keys must be provided")
	}

	if err := m.kv.Set(ctx, KeyOpenAI, keys.OpenAI); err != nil {
		return apperrors.NewStorageError("save credentials", err)
	}
	if err := m.kv.Set(ctx, KeySerpAPI, keys.SerpAPI); err != nil {
		return apperrors.NewStorageError("save credentials", err)
	}

	m.logger.Info("api keys saved", map[string]interface{}{"openai": Mask(keys.OpenAI)})
	return nil
}

// Configured reports whether keys are enough to run an analysis.
func (m *Manager) Configured(keys Keys) bool {
	if keys.OpenAI == "" {
		return false
	}
	return !m.searchKeyRequired || keys.SerpAPI != ""
}

// Verify makes one minimal call to each backend. The returned error names the
// backend that failed.
func Verify(ctx context.Context, completer completion.Completer, backend search.Backend) error {
	if _, err := completer.Complete(ctx, completion.Request{
		Purpose:   "verify",
		Parts:     []completion.Part{{Text: "Hello"}},
		MaxTokens: 5,
	}); err != nil {
		return err
	}

	if _, err := backend.Search(ctx, "test", 1); err != nil {
		return apperrors.NewTransportError(backend.Name(), err)
	}
	return nil
}
