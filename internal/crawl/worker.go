package crawl

import (
	"net/url"
	"time"

	"github.com/nrahman/sitemapgen/internal/events"
	"github.com/nrahman/sitemapgen/internal/linkextract"
	"github.com/nrahman/sitemapgen/internal/metrics"
)

// worker runs one task to completion: optionally fetch, optionally parse,
// re-admit any discovered links, then signal completion. Every worker
// goroutine is spawned by its caller before it ever touches the semaphore,
// so a task blocked waiting for a permit can never be the thing a permit
// holder is itself waiting on.
func (p *pump) worker(t task) {
	defer p.inflight.Done()

	if t.depth == 0 {
		// Admitted into the visited set by the caller already; this subtree
		// simply isn't fetched.
		return
	}

	if p.sink != nil {
		p.sink.Visited(t.url)
	}

	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		// Context cancelled while waiting for a permit; nothing left to do.
		return
	}

	start := time.Now()
	result, err := p.fetcher.Fetch(p.ctx, t.url)
	p.sem.Release(1)

	domain := t.url.Hostname()
	if err != nil {
		metrics.RecordFetch(domain, "error", time.Since(start), 0)
		events.ReportError(t.url, err)
		p.logger.Error("fetch failed", "url", t.url.String(), "err", err)
		return
	}

	outcome := "ok"
	if result.Stopped {
		outcome = "stopped"
	}
	metrics.RecordFetch(domain, outcome, time.Since(start), len(result.Body))

	if result.Stopped || result.Body == "" {
		return
	}

	var links []*url.URL
	done := make(chan struct{})
	p.parsePool.Go(func() {
		defer close(done)
		links = linkextract.Extract(result.FinalURL, result.Body, p.validator, p.opts.StripQueryAndFragment)
	})
	<-done

	for _, link := range links {
		p.inflight.Add(1)
		select {
		case p.tasks <- task{url: link, depth: t.depth - 1}:
		case <-p.ctx.Done():
			p.inflight.Done()
			events.ReportError(link, p.ctx.Err())
		}
	}
}
