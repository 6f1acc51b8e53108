package fetcher

import (
	"context"
	"errors"
	"github.com/PuerkitoBio/goquery"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/csr-ugra/yellowpages-parser/internal/log"
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	"github.com/sirupsen/logrus"
	"math/rand"
	"time"
)

type RetryOpts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Jitter      bool
}

var DefaultRetry = RetryOpts{
	MaxAttempts: 3,
	InitialWait: time.Second,
	MaxWait:     30 * time.Second,
	Jitter:      true,
}

// Retrying repeats failed fetches with exponential backoff. Only network
// errors, 429 and 5xx responses are retried.
type Retrying struct {
	fetcher Fetcher
	opts    RetryOpts
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewRetrying(fetcher Fetcher, opts RetryOpts) *Retrying {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultRetry.MaxWait
	}

	return &Retrying{
		fetcher: fetcher,
		opts:    opts,
		sleep:   util.Sleep,
	}
}

func (r *Retrying) Fetch(ctx context.Context, url string) (doc *goquery.Document, err error) {
	logger := log.GetLogger().WithField("Url", url)
	wait := r.opts.InitialWait

	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		doc, err = r.fetcher.Fetch(ctx, url)
		if err == nil {
			return doc, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var fetchErr *internal.FetchError
		if !errors.As(err, &fetchErr) || !fetchErr.Retryable() {
			return nil, err
		}

		if attempt == r.opts.MaxAttempts {
			break
		}

		delay := wait
		if r.opts.Jitter {
			delay = time.Duration(float64(wait) * (0.5 + rand.Float64()))
		}
		if delay > r.opts.MaxWait {
			delay = r.opts.MaxWait
		}

		logger.WithFields(logrus.Fields{
			"FetchAttempt": attempt,
			"RetryIn":      delay.String(),
		}).WithError(err).Warn("failed to fetch {Url}, trying again")

		if err = r.sleep(ctx, delay); err != nil {
			return nil, err
		}

		wait *= 2
		if wait > r.opts.MaxWait {
			wait = r.opts.MaxWait
		}
	}

	return nil, err
}
