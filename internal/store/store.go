// Package store provides the flat key-value persistence every other component
// builds on. Keys are plain strings; namespacing such as "profile_<id>" is the
// caller's convention and is not enforced here.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been set or was deleted.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is single-writer local persistence. Every method may fail with
// an I/O error; callers must treat a failed call as not having happened.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}

// FirstRunKey marks that the store has been initialized once.
const FirstRunKey = "app_first_run"

// EnsureInitialized wipes the store the first time it is opened and writes the
// sentinel key. It reports whether this call performed the first-run reset.
func EnsureInitialized(ctx context.Context, kv KeyValueStore) (bool, error) {
	_, err := kv.Get(ctx, FirstRunKey)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return false, err
	}

	if err := kv.Clear(ctx); err != nil {
		return false, err
	}
	if err := kv.Set(ctx, FirstRunKey, "false"); err != nil {
		return false, err
	}
	return true, nil
}
