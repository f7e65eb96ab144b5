// Package httpx holds the shared JSON-over-HTTP plumbing used by completion
// service providers.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// PostJSON sends body as a JSON POST to url and decodes the 2xx response
// into Out. A non-2xx status is returned as an error carrying the response
// text. The bearer token is attached when apiKey is non-empty.
func PostJSON[Out any](ctx context.Context, client *http.Client, url, apiKey string, body any) (*Out, error) {
	if client == nil {
		client = http.DefaultClient
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, truncate(string(respBody), 500))
	}

	var out Out
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response (status %d): %w; preview: %s",
			res.StatusCode, err, truncate(string(respBody), 500))
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
