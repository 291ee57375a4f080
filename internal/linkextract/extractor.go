// Package linkextract parses an HTML document and produces the canonical,
// in-scope candidate URLs reachable from it via <a href> links.
package linkextract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nrahman/sitemapgen/internal/scope"
	"github.com/nrahman/sitemapgen/internal/siteurl"
)

// Extract parses html (using requestURL as the fallback base) and returns an
// ordered, possibly-duplicated list of in-scope canonical URLs discovered in
// <a href> attributes. Malformed HTML is tolerated; a document with no
// extractable links yields an empty, non-nil slice.
func Extract(requestURL *url.URL, html string, validator *scope.Validator, stripQueryAndFragment bool) []*url.URL {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []*url.URL{}
	}

	base := effectiveBase(doc, requestURL)

	out := []*url.URL{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		resolved, err := resolve(base, href)
		if err != nil || !siteurl.FilterHTTP(resolved) {
			return
		}

		canon := siteurl.Canonicalize(resolved, stripQueryAndFragment)
		if !validator.IsValid(canon) {
			return
		}
		out = append(out, canon)
	})

	return out
}

// effectiveBase returns the first <base href> within <head> that parses as
// an absolute, hierarchical, http(s) URL; otherwise it falls back to
// requestURL.
func effectiveBase(doc *goquery.Document, requestURL *url.URL) *url.URL {
	var found *url.URL
	doc.Find("head > base[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		u, err := url.Parse(href)
		if err != nil || !siteurl.Hierarchical(u) || !siteurl.FilterHTTP(u) {
			return true
		}
		found = u
		return false
	})
	if found != nil {
		return found
	}
	return requestURL
}

func resolve(base *url.URL, ref string) (*url.URL, error) {
	rel, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(rel), nil
}
