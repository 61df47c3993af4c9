package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/supplydesk/supplydesk-backend/pkg/config"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

// Fetcher retrieves a price-list document from a supplier URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads price lists over HTTP with a bounded timeout and a
// capped body size.
type HTTPFetcher struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPFetcher constructs a fetcher from the feed config.
func NewHTTPFetcher(cfg config.FeedConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client:       &http.Client{Timeout: cfg.FetchTimeout},
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Fetch downloads the document body. Any transport or status failure comes
// back as a fetch error so callers can map it uniformly.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "building feed request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "fetching price list")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeFetch, fmt.Sprintf("price list fetch returned status %d", resp.StatusCode))
	}

	limited := io.LimitReader(resp.Body, f.maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "reading price list body")
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, pkgerrors.New(pkgerrors.CodeFetch, fmt.Sprintf("price list exceeds %d bytes", f.maxBodyBytes))
	}

	return body, nil
}
