// Command sitemapgen crawls one or more sites and prints, counts, or writes
// out the set of pages discovered. It is the CLI front end around the
// crawl engine; argument parsing, confirmations and output formatting all
// live here, never in the core packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"sort"

	"github.com/nrahman/sitemapgen/internal/crawl"
	"github.com/nrahman/sitemapgen/internal/scope"
	"github.com/spf13/cobra"
)

type cliFlags struct {
	startingPoints      []string
	skipScopeAsStarting bool
	additionalLinks     []string
	maxConcurrentTasks  int
	removeQueryAndFrag  bool
	maxDepth            int
	verbose             bool
	list                bool
	total               bool
	sitemapFile         string
	additionalDir       string
	force               bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:     "sitemapgen [flags] domains_to_analyze...",
		Short:   "Crawl one or more sites and report the pages reachable from them",
		Version: crawl.AppVersion,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, flags)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceVarP(&flags.startingPoints, "starting-points", "s", nil,
		"sites to start the crawl from; domains_to_analyze are included by default (see --sstaasp)")
	cmd.Flags().BoolVar(&flags.skipScopeAsStarting, "sstaasp", false,
		"skip seeding domains_to_analyze as starting points")
	cmd.Flags().StringSliceVarP(&flags.additionalLinks, "additional-links", "a", nil,
		"links added to the output verbatim, but never crawled")
	cmd.Flags().IntVarP(&flags.maxConcurrentTasks, "max-concurrent-tasks", "c", runtime.NumCPU(),
		"max number of sites analyzed simultaneously")
	cmd.Flags().BoolVar(&flags.removeQueryAndFrag, "rqaf", false,
		"remove query and fragment from analyzed urls")
	cmd.Flags().IntVarP(&flags.maxDepth, "max-depth", "d", 50,
		"max depth of the crawl")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"report every visited/removed url as it happens")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false,
		"print every discovered url to stdout")
	cmd.Flags().BoolVarP(&flags.total, "total", "t", false,
		"print only the count of discovered urls")
	cmd.Flags().StringVarP(&flags.sitemapFile, "sitemap-file", "F", "",
		"write the discovered urls to this file, one per line")
	cmd.Flags().StringVarP(&flags.additionalDir, "additional-dir", "D", "",
		"empty this directory before writing the sitemap file")
	cmd.Flags().BoolVar(&flags.force, "force", false,
		"skip interactive confirmation before overwriting files")

	return cmd
}

func run(ctx context.Context, domainArgs []string, flags cliFlags) error {
	domains, err := parseDomains(domainArgs)
	if err != nil {
		return err
	}

	seeds, err := parseSeeds(flags.startingPoints)
	if err != nil {
		return err
	}
	if !flags.skipScopeAsStarting {
		seeds = append(seeds, domains...)
	}

	additionalLinks, err := parseVerbatimLinks(flags.additionalLinks)
	if err != nil {
		return err
	}

	if flags.maxConcurrentTasks <= 0 {
		return fmt.Errorf("max-concurrent-tasks must be greater than zero")
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := crawl.NewOptionsBuilder().
		SetMaxConcurrentTasks(flags.maxConcurrentTasks).
		SetMaxDepth(flags.maxDepth).
		SetStripQueryAndFragment(flags.removeQueryAndFrag).
		SetVerbose(flags.verbose).
		SetLogger(logger).
		Build()

	validator := scope.New(domains)
	visited := crawl.Analyze(ctx, seeds, validator, opts)

	sites := make([]*url.URL, 0, len(visited)+len(additionalLinks))
	for _, u := range visited {
		sites = append(sites, u)
	}
	sortURLs(sites)
	sites = append(sites, additionalLinks...)

	return emit(sites, flags)
}

func parseDomains(raw []string) ([]*url.URL, error) {
	domains := make([]*url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := parseAbsoluteHierarchical(s)
		if err != nil {
			return nil, fmt.Errorf("invalid domain %q: %w", s, err)
		}
		if rest := u.EscapedPath(); rest != "" && rest != "/" {
			return nil, fmt.Errorf("%q is not a valid domain: path must be empty or \"/\"", s)
		}
		domains = append(domains, u)
	}
	return domains, nil
}

func parseSeeds(raw []string) ([]*url.URL, error) {
	seeds := make([]*url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := parseAbsoluteHierarchical(s)
		if err != nil {
			return nil, fmt.Errorf("invalid starting point %q: %w", s, err)
		}
		seeds = append(seeds, u)
	}
	return seeds, nil
}

func parseVerbatimLinks(raw []string) ([]*url.URL, error) {
	links := make([]*url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid additional link %q: %w", s, err)
		}
		links = append(links, u)
	}
	return links, nil
}

func parseAbsoluteHierarchical(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Opaque != "" {
		return nil, fmt.Errorf("must be an absolute, hierarchical url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme must be http or https")
	}
	return u, nil
}

func sortURLs(urls []*url.URL) {
	sort.Slice(urls, func(i, j int) bool {
		return urls[i].String() < urls[j].String()
	})
}
