// Package siteurl reduces URLs to a comparison-stable canonical form and
// filters them down to the schemes the crawler is willing to follow.
package siteurl

import (
	"net/url"
	"sort"
)

// Canonicalize returns a copy of u with its query parameters sorted by key
// then value and its fragment removed. When stripQueryAndFragment is true the
// query string is dropped entirely instead of being sorted.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(u)) == Canonicalize(u).
// The path keeps its percent-encoding. A non-empty query is decoded with
// url.URL.Query and re-encoded with url.Values.Encode, so its percent-encoding
// is normalized rather than preserved, and pairs that url.ParseQuery rejects
// (such as ones containing ';') are dropped.
func Canonicalize(u *url.URL, stripQueryAndFragment bool) *url.URL {
	out := *u
	out.Fragment = ""
	out.RawFragment = ""

	if stripQueryAndFragment {
		out.RawQuery = ""
		return &out
	}

	if out.RawQuery == "" {
		return &out
	}

	values := out.Query()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sorted := url.Values{}
	for _, k := range keys {
		vals := append([]string(nil), values[k]...)
		sort.Strings(vals)
		sorted[k] = vals
	}
	out.RawQuery = sorted.Encode()

	return &out
}

// FilterHTTP reports whether u uses the http or https scheme; only those are
// crawlable.
func FilterHTTP(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// Hierarchical reports whether u can serve as a base for resolving relative
// references. Opaque URLs (e.g. "mailto:foo@bar.com") cannot.
func Hierarchical(u *url.URL) bool {
	return u.IsAbs() && u.Opaque == ""
}
