package fetcher_chromedp

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"strings"
	"time"
)

// Fetcher renders pages in a remote chrome reachable over the devtools protocol.
type Fetcher struct {
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	timeout         time.Duration
}

func New(ctx context.Context, devtoolsWebsocketUrl string, timeout time.Duration) *Fetcher {
	allocatorCtx, allocatorCancel := chromedp.NewRemoteAllocator(ctx, devtoolsWebsocketUrl, chromedp.NoModifyURL)

	return &Fetcher{
		allocatorCtx:    allocatorCtx,
		allocatorCancel: allocatorCancel,
		timeout:         timeout,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	chromeCtx, chromeCancel := chromedp.NewContext(f.allocatorCtx)
	defer chromeCancel()

	if f.timeout > 0 {
		var timeoutCancel context.CancelFunc
		chromeCtx, timeoutCancel = context.WithTimeout(chromeCtx, f.timeout)
		defer timeoutCancel()
	}

	// the tab lives under the allocator context, tie it to the caller too
	stop := context.AfterFunc(ctx, chromeCancel)
	defer stop()

	var html string
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorNetwork, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorParse, Err: err}
	}

	return doc, nil
}

func (f *Fetcher) Close() error {
	f.allocatorCancel()
	return nil
}
