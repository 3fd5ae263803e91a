// Package fetch downloads remote spreadsheets for the import-by-URL flow.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxDownloadBytes = 32 << 20

// Client retrieves remote files over HTTP.
type Client interface {
	Download(ctx context.Context, rawURL string) (string, []byte, error)
}

// HTTPClient is a resty-backed implementation of Client.
type HTTPClient struct {
	httpClient *resty.Client
}

// NewClient builds a download client with conservative timeouts.
func NewClient() *HTTPClient {
	restyClient := resty.New()
	restyClient.
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &HTTPClient{httpClient: restyClient}
}

// Download fetches the file at rawURL and returns its basename along with the
// body. Responses outside 2xx or larger than 32 MiB are rejected.
func (c *HTTPClient) Download(ctx context.Context, rawURL string) (string, []byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", nil, fmt.Errorf("invalid source url %q", rawURL)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", nil, fmt.Errorf("download %s: unexpected status %d", rawURL, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return "", nil, fmt.Errorf("download %s: empty response", rawURL)
	}
	if len(body) > maxDownloadBytes {
		return "", nil, fmt.Errorf("download %s: file exceeds %d bytes", rawURL, maxDownloadBytes)
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		name = "source.xlsx"
	}
	return name, body, nil
}
