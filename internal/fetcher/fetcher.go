// Package fetcher loads directory pages and parses them into goquery documents.
package fetcher

import (
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"net/http"
	"time"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

type HttpFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHttpFetcher(timeout time.Duration, userAgent string) *HttpFetcher {
	return &HttpFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (f *HttpFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorHttpStatus, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorParse, Err: err}
	}
	doc.Url = resp.Request.URL

	return doc, nil
}
