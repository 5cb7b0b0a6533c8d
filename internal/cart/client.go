package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/domain"
	"github.com/oldgate-museum/booking-widget/pkg/retry"
	"github.com/oldgate-museum/booking-widget/pkg/telemetry"
)

// Client is the remote shopping cart service the widget reconciles
// against. The contract is fixed: add and update response bodies are
// ignored, only success or failure matters.
type Client interface {
	// Add bulk-adds line items to the remote cart
	Add(ctx context.Context, req *AddRequest) error

	// Update sets absolute quantities per variant, zeros included
	Update(ctx context.Context, req *UpdateRequest) error

	// Clear empties the remote cart
	Clear(ctx context.Context) error

	// Snapshot reads the current remote cart state
	Snapshot(ctx context.Context) (*domain.CartSnapshot, error)
}

// ClientConfig contains HTTP cart client configuration
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// SnapshotMaxRetries bounds retries of the snapshot read. Commit
	// calls (add, update, clear) are never retried: they are a terminal
	// outcome for their interaction.
	SnapshotMaxRetries int
}

// HTTPClient implements Client against the real cart service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retry.Retrier
}

// NewHTTPClient creates a new HTTP cart client
func NewHTTPClient(cfg *ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.SnapshotMaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = maxRetries

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retrier: retry.New(retryCfg),
	}
}

// Add bulk-adds line items to the remote cart
func (c *HTTPClient) Add(ctx context.Context, req *AddRequest) error {
	return c.post(ctx, "/cart/add", req)
}

// Update sets absolute quantities per variant
func (c *HTTPClient) Update(ctx context.Context, req *UpdateRequest) error {
	return c.post(ctx, "/cart/update", req)
}

// Clear empties the remote cart
func (c *HTTPClient) Clear(ctx context.Context) error {
	return c.post(ctx, "/cart/clear", nil)
}

// Snapshot reads the current remote cart state. The read is idempotent
// and retried on transient failure.
func (c *HTTPClient) Snapshot(ctx context.Context) (*domain.CartSnapshot, error) {
	var snapshot *domain.CartSnapshot

	result := c.retrier.Do(ctx, func(ctx context.Context) error {
		got, err := c.fetchSnapshot(ctx)
		if err != nil {
			return err
		}
		snapshot = got
		return nil
	})
	if result.Err != nil {
		if result.LastError != nil {
			return nil, result.LastError
		}
		return nil, result.Err
	}

	return snapshot, nil
}

func (c *HTTPClient) fetchSnapshot(ctx context.Context) (*domain.CartSnapshot, error) {
	url := fmt.Sprintf("%s/cart.js", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	telemetry.InjectHTTPHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch cart snapshot: %v", domain.ErrRemoteCartFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: cart snapshot returned status %d", domain.ErrRemoteCartFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, retry.Permanent(fmt.Errorf("%w: cart snapshot returned status %d", domain.ErrRemoteCartFailed, resp.StatusCode))
	}

	var snapshot domain.CartSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, retry.Permanent(fmt.Errorf("%w: decode cart snapshot: %v", domain.ErrRemoteCartFailed, err))
	}

	return &snapshot, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}) error {
	url := c.baseURL + path

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	telemetry.InjectHTTPHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrRemoteCartFailed, path, err)
	}
	defer resp.Body.Close()

	// Response bodies are ignored on the cart contract
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s returned status %d", domain.ErrRemoteCartFailed, path, resp.StatusCode)
	}

	return nil
}

// NoOpClient is a no-op implementation for tests and for environments
// without a cart service
type NoOpClient struct{}

// NewNoOpClient creates a new no-op cart client
func NewNoOpClient() *NoOpClient {
	return &NoOpClient{}
}

// Add is a no-op
func (c *NoOpClient) Add(ctx context.Context, req *AddRequest) error {
	return nil
}

// Update is a no-op
func (c *NoOpClient) Update(ctx context.Context, req *UpdateRequest) error {
	return nil
}

// Clear is a no-op
func (c *NoOpClient) Clear(ctx context.Context) error {
	return nil
}

// Snapshot returns an empty cart
func (c *NoOpClient) Snapshot(ctx context.Context) (*domain.CartSnapshot, error) {
	return &domain.CartSnapshot{Items: []domain.CartSnapshotItem{}}, nil
}

var _ Client = (*HTTPClient)(nil)
var _ Client = (*NoOpClient)(nil)
