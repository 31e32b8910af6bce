package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Shreyr69/hackrx/internal/httpx"
)

// maxDocumentBytes caps how much of a remote document is downloaded.
const maxDocumentBytes = 50 << 20

var fetchClient = httpx.NewClient(httpx.WithRequestTimeout(60 * time.Second))

// Fetch downloads the document at rawURL and returns its bytes together with
// the declared Content-Type. Network failures and non-2xx statuses come back
// as typed httpx errors.
func Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("ingest: create request: %w", err)
	}

	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("ingest: fetch %s: %w", rawURL, &httpx.TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("ingest: fetch %s: %w", rawURL, &httpx.StatusError{StatusCode: resp.StatusCode})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("ingest: read %s: %w", rawURL, &httpx.TransportError{Err: err})
	}
	if len(data) > maxDocumentBytes {
		return nil, "", fmt.Errorf("ingest: document at %s exceeds %d byte limit", rawURL, maxDocumentBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
