package camunda

import (
	"context"
	"fmt"
	"time"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client and owns its connection lifecycle.
type Client struct {
	client zbc.Client
	config *ClientConfig
	logger logger.Logger
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	ConnectAttempts        int
	ConnectBackoff         time.Duration
}

func DefaultClientConfig(address string) *ClientConfig {
	return &ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		ConnectAttempts:        10,
		ConnectBackoff:         2 * time.Second,
	}
}

// NewClient dials the gateway and waits for a topology response. Connection
// attempts back off exponentially; job handling itself is never retried here.
func NewClient(ctx context.Context, config *ClientConfig, log logger.Logger) (*Client, error) {
	if config.GatewayAddress == "" {
		return nil, apperrors.NewValidationError("camunda.broker_address is required")
	}
	if config.ConnectAttempts <= 0 {
		config.ConnectAttempts = 1
	}
	log = logger.Component(log, "zeebe")

	var lastErr error
	delay := config.ConnectBackoff
	for attempt := 1; attempt <= config.ConnectAttempts; attempt++ {
		zc, err := dial(ctx, config)
		if err == nil {
			log.Info("connected to zeebe gateway", map[string]interface{}{
				"address": config.GatewayAddress,
				"attempt": attempt,
			})
			return &Client{client: zc, config: config, logger: log}, nil
		}
		lastErr = err

		if attempt == config.ConnectAttempts {
			break
		}
		log.Warn("zeebe connection failed, retrying", map[string]interface{}{
			"error":       err,
			"attempt":     attempt,
			"maxAttempts": config.ConnectAttempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, apperrors.NewTransportError("zeebe", ctx.Err())
		}
		delay *= 2
	}

	return nil, apperrors.NewTransportError("zeebe",
		fmt.Errorf("gateway %s unreachable after %d attempts: %w", config.GatewayAddress, config.ConnectAttempts, lastErr))
}

func dial(ctx context.Context, config *ClientConfig) (zbc.Client, error) {
	zc, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.ConnectionTimeout)
	defer cancel()

	if _, err := zc.NewTopologyCommand().Send(ctx); err != nil {
		_ = zc.Close()
		return nil, fmt.Errorf("topology request failed: %w", err)
	}
	return zc, nil
}

// Raw returns the underlying client for opening job workers.
func (c *Client) Raw() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return apperrors.NewTransportError("zeebe", err)
	}
	return nil
}
