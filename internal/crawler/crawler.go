// Package crawler walks a paginated directory from a start url, storing every
// listing and its neighborhood links before moving on to the next page.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/csr-ugra/yellowpages-parser/internal/fetcher"
	"github.com/csr-ugra/yellowpages-parser/internal/log"
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	"github.com/csr-ugra/yellowpages-parser/internal/util/assert"
	"github.com/sirupsen/logrus"
	"time"
)

type Extractor interface {
	Extract(doc *goquery.Document) ([]internal.Listing, []error)
	NextPage(doc *goquery.Document) (string, bool)
}

type Store interface {
	InsertListing(ctx context.Context, listing *internal.Listing) (int64, error)
	InsertLink(ctx context.Context, propertyId int64, hoodId int64) error
	Ping(ctx context.Context) error
}

type Resolver interface {
	ResolveOrCreate(ctx context.Context, name string) (int64, error)
}

type Options struct {
	PolitenessDelay time.Duration

	// 0 means no limit
	MaxPages int

	TraceId string
}

type Crawler struct {
	fetcher   fetcher.Fetcher
	extractor Extractor
	store     Store
	refs      Resolver
	opts      Options
	sleep     func(ctx context.Context, d time.Duration) error
}

func New(fetcher fetcher.Fetcher, extractor Extractor, store Store, refs Resolver, opts Options) *Crawler {
	assert.NotNil(fetcher, "crawler requires a page fetcher")
	assert.NotNil(extractor, "crawler requires an extractor")
	assert.NotNil(store, "crawler requires a store")
	assert.NotNil(refs, "crawler requires a neighborhood resolver")
	assert.Assert(opts.PolitenessDelay >= 0, "politeness delay must not be negative", "PolitenessDelay", opts.PolitenessDelay)

	return &Crawler{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		refs:      refs,
		opts:      opts,
		sleep:     util.Sleep,
	}
}

// Run crawls until the last page, a fatal error or cancellation. Page N is
// fully stored before page N+1 is requested. The returned run is never nil.
func (c *Crawler) Run(ctx context.Context, startUrl string) (*internal.CrawlRun, error) {
	run := internal.NewCrawlRun(c.opts.TraceId, startUrl)
	logger := log.GetLogger().WithField("StartUrl", startUrl)

	visited := make(map[string]struct{})
	current := startUrl

	for {
		if err := ctx.Err(); err != nil {
			return c.interrupted(run, logger, err)
		}

		visited[current] = struct{}{}
		pageNumber := run.PageCount + 1
		pageLogger := logger.WithFields(logrus.Fields{
			"Url":        current,
			"PageNumber": pageNumber,
		})

		pageLogger.Info("fetching page {PageNumber}")
		doc, err := c.fetcher.Fetch(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return c.interrupted(run, logger, ctx.Err())
			}

			err = fmt.Errorf("failed to fetch page %d at %s: %w", pageNumber, current, err)
			pageLogger.WithError(err).Error("failed to fetch page {PageNumber}")
			run.Finish(internal.CrawlRunFailed, err)
			return run, err
		}
		run.PageCount++

		if err = c.processPage(ctx, doc, run, pageLogger); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.interrupted(run, logger, err)
			}

			pageLogger.WithError(err).Error("aborting crawl on page {PageNumber}")
			run.Finish(internal.CrawlRunFailed, err)
			return run, err
		}

		next, ok := c.extractor.NextPage(doc)
		if !ok {
			return c.completed(run, logger, "crawl complete")
		}

		if _, seen := visited[next]; seen {
			pageLogger.WithField("NextUrl", next).Warn("next page {NextUrl} was already visited")
			return c.completed(run, logger, "crawl complete, pagination loops back")
		}

		if c.opts.MaxPages > 0 && run.PageCount >= c.opts.MaxPages {
			return c.completed(run, logger.WithField("MaxPages", c.opts.MaxPages), "crawl complete, reached page limit of {MaxPages}")
		}

		if err = c.sleep(ctx, c.opts.PolitenessDelay); err != nil {
			return c.interrupted(run, logger, err)
		}

		current = next
	}
}

func (c *Crawler) processPage(ctx context.Context, doc *goquery.Document, run *internal.CrawlRun, logger log.Logger) error {
	listings, errs := c.extractor.Extract(doc)
	for _, err := range errs {
		run.SkippedCount++
		logger.WithError(err).Warn("skipping unreadable listing")
	}

	logger.WithField("RecordCount", len(listings)).Debug("extracted {RecordCount} listings")

	for i := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.persist(ctx, &listings[i], run, logger); err != nil {
			return err
		}
	}

	return nil
}

// persist stores one listing and its neighborhood links. Only errors that must
// stop the crawl are returned.
func (c *Crawler) persist(ctx context.Context, listing *internal.Listing, run *internal.CrawlRun, logger log.Logger) error {
	recordLogger := logger.WithField("Name", listing.Name.String())

	propertyId, err := c.store.InsertListing(ctx, listing)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		recordLogger.WithError(err).Error("failed to insert listing {Name}")
		if pingErr := c.store.Ping(ctx); pingErr != nil {
			return fmt.Errorf("storage unreachable: %w", pingErr)
		}

		run.SkippedCount++
		return nil
	}
	run.RecordCount++

	recordLogger = recordLogger.WithField("PropertyId", propertyId)
	for _, name := range listing.Neighborhoods {
		hoodId, err := c.refs.ResolveOrCreate(ctx, name)
		if err == nil {
			err = c.store.InsertLink(ctx, propertyId, hoodId)
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			recordLogger.WithField("Neighborhood", name).WithError(err).
				Warn("failed to link {Neighborhood}, skipping remaining neighborhoods of {Name}")
			break
		}

		run.LinkCount++
	}

	recordLogger.Debug("stored listing {Name}")
	return nil
}

func (c *Crawler) completed(run *internal.CrawlRun, logger log.Logger, msg string) (*internal.CrawlRun, error) {
	run.Finish(internal.CrawlRunCompleted, nil)
	logger.WithFields(runFields(run)).Info(msg)

	return run, nil
}

func (c *Crawler) interrupted(run *internal.CrawlRun, logger log.Logger, err error) (*internal.CrawlRun, error) {
	run.Finish(internal.CrawlRunInterrupted, err)
	logger.WithFields(runFields(run)).Warn("crawl interrupted after {PageCount} pages")

	return run, err
}

func runFields(run *internal.CrawlRun) logrus.Fields {
	return logrus.Fields{
		"PageCount":    run.PageCount,
		"RecordCount":  run.RecordCount,
		"LinkCount":    run.LinkCount,
		"SkippedCount": run.SkippedCount,
	}
}
