// Package notify calls the outward notification API after a terminal case
// outcome.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultTimeout bounds the fire-and-forget notification call.
const defaultTimeout = 30 * time.Second

// Client posts case completion notifications.
type Client struct {
	url   string
	token string
	http  *http.Client
}

// NewClient creates a notification client. A nil httpClient gets a default
// with a bounded timeout.
func NewClient(url, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{url: url, token: token, http: httpClient}
}

// Notify posts the reference id of a completed request and returns the
// response status code. Failures are the caller's to log; a notification
// is never retried here.
func (c *Client) Notify(ctx context.Context, refID string) (int, error) {
	payload, err := json.Marshal(map[string]string{"ref_id": refID})
	if err != nil {
		return 0, fmt.Errorf("marshal notify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send notify request: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
