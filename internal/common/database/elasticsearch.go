package database

import (
	"context"
	"fmt"

	"foodlens/internal/common/config"
	apperrors "foodlens/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewElasticsearchClient builds a client for the guidance index. No request
// is made until the first search or CheckIndex.
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, apperrors.NewValidationError("elasticsearch addresses are empty")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, apperrors.NewTransportError("elasticsearch", err)
	}
	return client, nil
}

// CheckIndex reports a transport error unless index exists.
func CheckIndex(ctx context.Context, client *elasticsearch.Client, index string) error {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	res, err := client.Indices.Exists([]string{index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return apperrors.NewTransportError("elasticsearch", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == 404:
		return apperrors.NewTransportError("elasticsearch", fmt.Errorf("index %q does not exist", index))
	case res.IsError():
		return apperrors.NewTransportError("elasticsearch", fmt.Errorf("index check: %s", res.Status()))
	}
	return nil
}
