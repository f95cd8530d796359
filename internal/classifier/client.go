package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to one external predict service (the subreddit or
// sentiment model). The model itself is a black box; the only contract is
// POST {"text": ...} -> {"label": ...}.
type Client struct {
	url    string
	client *http.Client
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Label string `json:"label"`
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Predict(ctx context.Context, text string) (string, error) {
	data, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("predict request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Label == "" {
		return "", fmt.Errorf("predict response has no label")
	}
	return out.Label, nil
}

// Ping reports whether the predict service is reachable. Any response
// below 500 counts as available; the model answers requests even if it
// rejects an empty probe.
func (c *Client) Ping(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("predict url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("predict service unhealthy: %s", resp.Status)
	}
	return nil
}
