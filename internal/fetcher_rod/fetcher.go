package fetcher_rod

import (
	"context"
	"errors"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"strings"
	"time"
)

// Fetcher renders pages in a running browser attached through rod.
type Fetcher struct {
	browser *rod.Browser
	timeout time.Duration
}

// New attaches to the browser behind devtoolsWebsocketUrl. The parser is meant
// to run next to a dedicated browser container, nothing is downloaded here.
func New(devtoolsWebsocketUrl string, timeout time.Duration) (*Fetcher, error) {
	if devtoolsWebsocketUrl == "" {
		return nil, errors.New("failed to attach to browser, devtools url not specified")
	}

	browser := rod.New().ControlURL(devtoolsWebsocketUrl)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", devtoolsWebsocketUrl, err)
	}

	// pages live in an own browser context, closing it leaves the browser running
	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context at %s: %w", devtoolsWebsocketUrl, err)
	}

	return &Fetcher{browser: incognito, timeout: timeout}, nil
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorNetwork, Err: err}
	}
	// ignoring error explicitly, the tab is closed even after ctx is done
	defer func(page *rod.Page) {
		_ = page.Context(context.Background()).Close()
	}(page)

	waitNetwork := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err = page.Navigate(url); err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorNetwork, Err: err}
	}
	waitNetwork()

	html, err := page.HTML()
	if err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorNetwork, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &internal.FetchError{Url: url, Kind: internal.FetchErrorParse, Err: err}
	}

	return doc, nil
}

// Close disposes the fetcher's browser context. The browser itself is not ours
// to stop.
func (f *Fetcher) Close() error {
	if f.browser.BrowserContextID == "" {
		return nil
	}

	return f.browser.Close()
}
