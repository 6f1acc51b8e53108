package cmd

import (
	"context"
	"fmt"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/csr-ugra/yellowpages-parser/internal/crawler"
	"github.com/csr-ugra/yellowpages-parser/internal/db"
	"github.com/csr-ugra/yellowpages-parser/internal/extractor"
	"github.com/csr-ugra/yellowpages-parser/internal/fetcher"
	"github.com/csr-ugra/yellowpages-parser/internal/fetcher_chromedp"
	"github.com/csr-ugra/yellowpages-parser/internal/fetcher_rod"
	"github.com/csr-ugra/yellowpages-parser/internal/log"
	"github.com/csr-ugra/yellowpages-parser/internal/reference"
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	"github.com/csr-ugra/yellowpages-parser/internal/util/assert"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

func Run(ctx context.Context, connection bun.IDB, config *util.Config) error {
	logger := log.AddGlobalField("FetchEngine", config.FetchEngine.Value)

	pageFetcher, closeFetcher, err := newFetcher(ctx, config)
	if err != nil {
		return err
	}
	defer closeFetcher()

	ext, err := extractor.New(config.SiteOrigin.Value)
	if err != nil {
		return err
	}

	// both are checked when the config is loaded
	delay, err := config.PolitenessDelay.Duration()
	assert.NoError(err, "invalid politeness delay passed config validation", "Value", config.PolitenessDelay.Value)
	maxPages, err := config.MaxPages.Int()
	assert.NoError(err, "invalid page limit passed config validation", "Value", config.MaxPages.Value)

	store := db.NewStore(connection, config.KeywordDelimiter.Value)
	c := crawler.New(pageFetcher, ext, store, reference.New(connection), crawler.Options{
		PolitenessDelay: delay,
		MaxPages:        maxPages,
		TraceId:         log.TraceId(),
	})

	startUrl := config.StartUrl.Value
	runModel := new(db.CrawlRunModel)
	if err = store.SaveRun(ctx, internal.NewCrawlRun(log.TraceId(), startUrl), runModel); err != nil {
		return err
	}
	logger.WithField("RunId", runModel.Id).Debug("registered crawl run {RunId}")

	run, crawlErr := c.Run(ctx, startUrl)

	// the run row is written even when ctx is cancelled
	if err = store.SaveRun(context.WithoutCancel(ctx), run, runModel); err != nil {
		logger.WithError(err).Error("failed to save crawl run")
		if crawlErr == nil {
			crawlErr = err
		}
	}

	logger.WithFields(logrus.Fields{
		"RunId":  runModel.Id,
		"Status": run.Status,
	}).Info("crawl run {RunId} finished with status {Status}")

	return crawlErr
}

func newFetcher(ctx context.Context, config *util.Config) (fetcher.Fetcher, func(), error) {
	timeout, err := config.FetchTimeout.Duration()
	if err != nil {
		return nil, nil, err
	}
	attempts, err := config.FetchMaxAttempts.Int()
	if err != nil {
		return nil, nil, err
	}

	var base fetcher.Fetcher
	closeFetcher := func() {}

	switch config.FetchEngine.Value {
	case util.FetchEngineChromedp:
		f := fetcher_chromedp.New(ctx, config.DevtoolsWebsocketUrl.Value, timeout)
		base, closeFetcher = f, func() { _ = f.Close() }
	case util.FetchEngineRod:
		f, err := fetcher_rod.New(config.DevtoolsWebsocketUrl.Value, timeout)
		if err != nil {
			return nil, nil, err
		}
		base, closeFetcher = f, func() { _ = f.Close() }
	case util.FetchEngineHttp:
		base = fetcher.NewHttpFetcher(timeout, config.UserAgent.Value)
	default:
		return nil, nil, fmt.Errorf("unknown fetch engine %q", config.FetchEngine.Value)
	}

	opts := fetcher.DefaultRetry
	if attempts > 0 {
		opts.MaxAttempts = attempts
	}

	return fetcher.NewRetrying(base, opts), closeFetcher, nil
}
