// Package crawl implements the concurrent task pump: it admits seed URLs,
// fans fetch-and-extract work out across a bounded pool of per-task
// goroutines, and folds newly discovered links back in through a single
// channel so exactly one goroutine ever decides whether a URL is new.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/nrahman/sitemapgen/internal/events"
	"github.com/nrahman/sitemapgen/internal/fetch"
	"github.com/nrahman/sitemapgen/internal/scope"
	"github.com/nrahman/sitemapgen/internal/siteurl"
	"github.com/nrahman/sitemapgen/internal/visitset"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/semaphore"
)

// task is one unit of pump work: a canonical URL, carrying however many hops
// remain before its subtree is abandoned. Seed tasks are admitted into the
// visited set before their worker starts; tasks sent on the channel are
// admitted (or discarded as duplicates) by the receive loop in Analyze.
type task struct {
	url   *url.URL
	depth int
}

// pump holds everything a worker needs to fetch, parse and re-admit links.
// It is built once per Analyze call and never mutated after construction.
type pump struct {
	ctx       context.Context
	tasks     chan task
	inflight  *sync.WaitGroup
	sem       *semaphore.Weighted
	parsePool *pool.Pool
	fetcher   *fetch.Fetcher
	validator *scope.Validator
	visited   *visitset.Set
	sink      *events.Sink
	logger    *slog.Logger
	opts      Options
}

// Analyze crawls seeds to completion and returns the final set of visited
// URLs, keyed by their canonical string form. It blocks until every admitted
// task (seed or discovered) has finished.
func Analyze(ctx context.Context, seeds []*url.URL, validator *scope.Validator, opts Options) map[string]*url.URL {
	if opts.MaxConcurrentTasks <= 0 {
		opts.MaxConcurrentTasks = defaultOptions().MaxConcurrentTasks
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	visited := visitset.New()

	var sink *events.Sink
	if opts.Verbose {
		sink = opts.EventSink
		if sink == nil {
			sink = events.NewSink(ctx, logger)
		}
	}

	fetcher, err := fetch.New(fetch.Config{
		Timeout:               opts.Timeout,
		UserAgent:             opts.UserAgent,
		Visited:               visited,
		Validator:             validator,
		StripQueryAndFragment: opts.StripQueryAndFragment,
		Sink:                  sink,
	})
	if err != nil {
		logger.Error("crawl: failed to build fetcher", "err", err)
		return visited.Drain()
	}

	p := &pump{
		ctx:       ctx,
		tasks:     make(chan task, opts.MaxConcurrentTasks),
		inflight:  &sync.WaitGroup{},
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrentTasks)),
		parsePool: pool.New().WithMaxGoroutines(opts.MaxConcurrentTasks),
		fetcher:   fetcher,
		validator: validator,
		visited:   visited,
		sink:      sink,
		logger:    logger,
		opts:      opts,
	}

	for _, seed := range seeds {
		canon := siteurl.Canonicalize(seed, opts.StripQueryAndFragment)
		if !validator.IsValid(canon) {
			continue
		}
		if !visited.TryInsert(canon) {
			continue
		}
		p.inflight.Add(1)
		go p.worker(task{url: canon, depth: opts.MaxDepth})
	}

	go func() {
		p.inflight.Wait()
		close(p.tasks)
	}()

	for t := range p.tasks {
		if p.visited.TryInsert(t.url) {
			go p.worker(t)
		} else {
			p.inflight.Done()
		}
	}

	p.parsePool.Wait()
	return visited.Drain()
}
