package crawl

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/nrahman/sitemapgen/internal/events"
)

// AppName and AppVersion compose the default User-Agent, per spec: "<app-name>/<app-version>".
const (
	AppName    = "sitemapgen"
	AppVersion = "0.1.0"
)

// Options are the immutable knobs governing a single crawl. Once passed to
// Analyze they are never mutated; callers wanting different behavior build a
// new Options value.
type Options struct {
	// MaxConcurrentTasks bounds the number of in-flight fetches. Must be
	// positive; defaults to the number of CPU cores.
	MaxConcurrentTasks int
	// MaxDepth is the number of further hops allowed past a seed before a
	// subtree is abandoned. 0 means seeds are admitted but never fetched.
	MaxDepth int
	// StripQueryAndFragment, when true, drops query and fragment entirely
	// during canonicalization instead of just sorting the query.
	StripQueryAndFragment bool
	// Verbose opts into "visited"/"removed" event reporting.
	Verbose bool
	// EventSink, if non-nil, receives crawl events instead of the default
	// internal slog-backed sink. Ignored unless Verbose is true.
	EventSink *events.Sink
	// UserAgent is sent on every HTTP request. Defaults to "<AppName>/<AppVersion>".
	UserAgent string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// Logger receives crawl diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// defaultOptions returns the Options defaults named in spec §3.
func defaultOptions() Options {
	return Options{
		MaxConcurrentTasks: runtime.NumCPU(),
		MaxDepth:           50,
		UserAgent:          fmt.Sprintf("%s/%s", AppName, AppVersion),
		Timeout:            30 * time.Second,
	}
}

// OptionsBuilder constructs an Options value fluently, mirroring the
// upstream project's builder-style configuration.
type OptionsBuilder struct {
	opts Options
}

// NewOptionsBuilder returns a builder seeded with the default Options.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{opts: defaultOptions()}
}

func (b *OptionsBuilder) SetMaxConcurrentTasks(n int) *OptionsBuilder {
	b.opts.MaxConcurrentTasks = n
	return b
}

func (b *OptionsBuilder) SetMaxDepth(n int) *OptionsBuilder {
	b.opts.MaxDepth = n
	return b
}

func (b *OptionsBuilder) SetStripQueryAndFragment(strip bool) *OptionsBuilder {
	b.opts.StripQueryAndFragment = strip
	return b
}

func (b *OptionsBuilder) SetVerbose(verbose bool) *OptionsBuilder {
	b.opts.Verbose = verbose
	return b
}

func (b *OptionsBuilder) SetEventSink(sink *events.Sink) *OptionsBuilder {
	b.opts.EventSink = sink
	return b
}

func (b *OptionsBuilder) SetUserAgent(ua string) *OptionsBuilder {
	b.opts.UserAgent = ua
	return b
}

func (b *OptionsBuilder) SetTimeout(d time.Duration) *OptionsBuilder {
	b.opts.Timeout = d
	return b
}

func (b *OptionsBuilder) SetLogger(logger *slog.Logger) *OptionsBuilder {
	b.opts.Logger = logger
	return b
}

// Build finalizes the Options value.
func (b *OptionsBuilder) Build() Options {
	return b.opts
}
