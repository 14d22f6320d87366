package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"foodlens/internal/store"
)

const keyPrefix = "search_"

// Key is the store key holding a user's enrichment record.
func Key(userID string) string {
	return keyPrefix + userID
}

type Repository struct {
	kv store.KeyValueStore
}

func NewRepository(kv store.KeyValueStore) *Repository {
	return &Repository{kv: kv}
}

// Save overwrites the user's record.
func (r *Repository) Save(ctx context.Context, userID string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode enrichment record: %w", err)
	}
	return r.kv.Set(ctx, Key(userID), string(data))
}

// Load returns the user's record, or nil when none was ever saved.
func (r *Repository) Load(ctx context.Context, userID string) (*Record, error) {
	raw, err := r.kv.Get(ctx, Key(userID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode enrichment record: %w", err)
	}
	return &rec, nil
}

func (r *Repository) Delete(ctx context.Context, userID string) error {
	return r.kv.Delete(ctx, Key(userID))
}
