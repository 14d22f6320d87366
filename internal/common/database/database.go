// Package database opens the storage and index backends and verifies they
// answer before handing the raw client to the layer that owns its schema.
package database

import (
	"context"
	"time"

	apperrors "foodlens/internal/common/errors"
)

// ConnectTimeout bounds the reachability check done on open.
const ConnectTimeout = 5 * time.Second

type closer interface {
	Close() error
}

// verify runs check under ConnectTimeout and closes c when it fails.
func verify(ctx context.Context, c closer, check func(context.Context) error, wrap func(error) error) error {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	if err := check(ctx); err != nil {
		_ = c.Close()
		return wrap(err)
	}
	return nil
}

func storageErr(op string) func(error) error {
	return func(err error) error { return apperrors.NewStorageError(op, err) }
}
