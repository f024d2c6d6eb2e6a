package wallet

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

const maxErrorBody = 512

// httpClient posts JSON to one wallet service.
type httpClient struct {
	provider   string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func newHTTPClient(provider, baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// postJSON sends body and returns the raw response on 2xx. Anything else is
// an *APIError.
func (c *httpClient) postJSON(ctx context.Context, path string, body interface{}) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%s wallet base URL not configured", c.provider)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s wallet %s: %w", c.provider, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(respBody)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &APIError{
			Provider: c.provider,
			Endpoint: path,
			Status:   resp.StatusCode,
			Body:     text,
		}
	}

	return respBody, nil
}
