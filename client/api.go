package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIClient persists orders and settings through the REST API. It
// implements Persister and SettingsPersister.
type APIClient struct {
	baseURL string
	token   string
	client  *http.Client
}

type APIOption func(*APIClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) APIOption {
	return func(a *APIClient) { a.client = c }
}

// NewAPIClient creates an API client. token is the bearer token attached
// to every request.
func NewAPIClient(baseURL, token string, opts ...APIOption) *APIClient {
	a := &APIClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PersistOrder sends the branch's full item order to the reorder endpoint.
func (a *APIClient) PersistOrder(ctx context.Context, branchID string, itemIDs []string) error {
	return a.put(ctx,
		fmt.Sprintf("%s/api/branch/reorder/%s", a.baseURL, branchID),
		map[string]any{"itemIds": itemIDs},
	)
}

// PersistSettings sends a partial branch update carrying only the changed
// fields.
func (a *APIClient) PersistSettings(ctx context.Context, branchID string, fields map[string]any) error {
	return a.put(ctx,
		fmt.Sprintf("%s/api/branch/%s", a.baseURL, branchID),
		fields,
	)
}

func (a *APIClient) put(ctx context.Context, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
