package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an error response body is kept for the
// StatusError message.
const maxErrorBody = 2048

// PostJSON marshals reqBody, POSTs it to url with client, and unmarshals a
// 2xx response into respBody (skipped when respBody is nil). Extra request
// headers may be passed via headers (nil is fine). Network failures are
// returned as [*TransportError] and non-2xx statuses as [*StatusError] so
// callers can classify retryability with [IsRetryable].
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("httpx: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("httpx: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if respBody != nil && len(body) > 0 {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("httpx: decode response: %w", err)
		}
	}

	return nil
}
